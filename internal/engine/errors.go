package engine

import (
	"errors"

	"github.com/kk-code-lab/rscan/internal/search"
)

// Validation errors. They are returned synchronously by the Start* entry
// points and never surface as events.
var (
	ErrNotFound      = errors.New("directory not found")
	ErrNotADirectory = errors.New("path is not a directory")
	ErrEmptyQuery    = errors.New("search query cannot be empty")
)

// ErrSinkClosed is returned by a Sink that can no longer accept events. It is
// the only emission error that stops a running operation.
var ErrSinkClosed = errors.New("event sink closed")

// InvalidPatternError reports a content query that failed to compile. Use
// errors.As to inspect it; Unwrap yields the regexp error.
type InvalidPatternError = search.PatternError
