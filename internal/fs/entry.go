package fs

import (
	"encoding/json"
	"os"
	"time"
)

// EntryKind distinguishes files from directories in results.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// KindOf maps a directory flag to an EntryKind.
func KindOf(isDir bool) EntryKind {
	if isDir {
		return KindDirectory
	}
	return KindFile
}

// modifiedLayout matches the ISO-8601 local timestamp shown by file listings.
const modifiedLayout = "2006-01-02T15:04:05"

// Entry represents a single file or directory on disk.
type Entry struct {
	Name      string
	Path      string
	Kind      EntryKind
	IsSymlink bool
	Size      int64
	Modified  time.Time
	Mode      os.FileMode
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// IsHidden reports whether the entry should be treated as hidden.
func (e Entry) IsHidden() bool {
	return IsHidden(e.Path, e.Name)
}

type entryJSON struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Kind     EntryKind `json:"kind"`
	Size     int64     `json:"size"`
	Modified string    `json:"modified"`
}

// MarshalJSON renders the entry in the listing wire format.
func (e Entry) MarshalJSON() ([]byte, error) {
	modified := ""
	if !e.Modified.IsZero() {
		modified = e.Modified.Local().Format(modifiedLayout)
	}
	size := e.Size
	if e.IsDir() {
		size = 0
	}
	return json.Marshal(entryJSON{
		Name:     e.Name,
		Path:     e.Path,
		Kind:     e.Kind,
		Size:     size,
		Modified: modified,
	})
}

// EntryFromInfo builds an Entry for fullPath from its FileInfo.
func EntryFromInfo(fullPath string, info os.FileInfo) Entry {
	return Entry{
		Name:      info.Name(),
		Path:      fullPath,
		Kind:      KindOf(info.IsDir()),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		Mode:      info.Mode(),
	}
}
