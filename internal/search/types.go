package search

import (
	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

// Candidate is a filesystem entry discovered by a walk, before matching.
type Candidate struct {
	AbsPath string
	RelPath string
	Name    string
	IsDir   bool
}

// NameResult is one scored hit of a fuzzy name search.
type NameResult struct {
	Name         string           `json:"name"`
	Path         string           `json:"path"`
	RelativePath string           `json:"relativePath"`
	Score        uint32           `json:"score"`
	Kind         fsutil.EntryKind `json:"kind"`

	order int
}

// ContentMatch is a single hit inside a line. MatchStart and MatchEnd are byte
// offsets into LineContent; Column is the 1-based byte column of MatchStart.
type ContentMatch struct {
	LineNumber  uint64 `json:"lineNumber"`
	Column      uint64 `json:"column"`
	LineContent string `json:"lineContent"`
	MatchStart  int    `json:"matchStart"`
	MatchEnd    int    `json:"matchEnd"`
}

// ContentResult groups the hits found in one file.
type ContentResult struct {
	Path         string         `json:"path"`
	RelativePath string         `json:"relativePath"`
	Matches      []ContentMatch `json:"matches"`
}
