package fs

import (
	"errors"
	iofs "io/fs"
	"os"
)

// Provider is the filesystem metadata surface the scanners depend on.
type Provider interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	Exists(path string) bool
}

// OSProvider reads metadata straight from the host filesystem.
type OSProvider struct{}

// Stat follows symlinks, like os.Stat.
func (OSProvider) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir returns entries sorted by file name.
func (OSProvider) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (OSProvider) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, iofs.ErrNotExist)
}

// Default is the provider used when callers do not supply one.
var Default Provider = OSProvider{}
