package fs

import (
	"path/filepath"
	"sort"
	"strings"
)

// ListDirectory reads dir through p and returns its entries with directories first,
// then by case-insensitive name. Entries whose metadata cannot be read are skipped.
func ListDirectory(p Provider, dir string) ([]Entry, error) {
	if p == nil {
		p = Default
	}
	dirEntries, err := p.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		info, infoErr := d.Info()
		if infoErr != nil {
			continue
		}
		entries = append(entries, EntryFromInfo(filepath.Join(dir, d.Name()), info))
	}

	SortEntries(entries)
	return entries, nil
}

// SortEntries orders entries directories-first, then by lower-cased name.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
