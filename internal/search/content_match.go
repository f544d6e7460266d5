package search

import (
	"context"
	"fmt"
	"regexp"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

// DefaultMaxMatchesPerFile caps the hits reported for one file.
const DefaultMaxMatchesPerFile = 50

// PatternError reports a query that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ContentQuery describes how a content query is interpreted.
type ContentQuery struct {
	Pattern       string
	CaseSensitive bool
	Regex         bool
}

// ContentMatcher finds non-overlapping hits of a compiled query in single lines.
type ContentMatcher struct {
	re         *regexp.Regexp
	maxPerFile int
}

// NewContentMatcher compiles q. Literal queries are escaped before compiling.
// A maxPerFile <= 0 selects DefaultMaxMatchesPerFile.
func NewContentMatcher(q ContentQuery, maxPerFile int) (*ContentMatcher, error) {
	expr := q.Pattern
	if !q.Regex {
		expr = regexp.QuoteMeta(expr)
	}
	if !q.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: q.Pattern, Err: err}
	}
	if maxPerFile <= 0 {
		maxPerFile = DefaultMaxMatchesPerFile
	}
	return &ContentMatcher{re: re, maxPerFile: maxPerFile}, nil
}

// MaxPerFile returns the per-file hit ceiling.
func (m *ContentMatcher) MaxPerFile() int {
	return m.maxPerFile
}

// MatchLine appends the hits in line to dst, scanning left to right and
// resuming after each hit's end. Empty matches are skipped. At most limit hits
// are appended.
func (m *ContentMatcher) MatchLine(dst []ContentMatch, lineNumber uint64, line string, limit int) []ContentMatch {
	if limit <= 0 {
		return dst
	}

	locs := m.re.FindAllStringIndex(line, -1)
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start == end {
			continue
		}
		dst = append(dst, ContentMatch{
			LineNumber:  lineNumber,
			Column:      uint64(start) + 1,
			LineContent: line,
			MatchStart:  start,
			MatchEnd:    end,
		})
		limit--
		if limit == 0 {
			break
		}
	}
	return dst
}

// MatchFile reads path through r and collects hits until the file ends, the
// per-file ceiling or budget is reached, or ctx is cancelled.
func (m *ContentMatcher) MatchFile(ctx context.Context, r fsutil.LineReader, path string, budget int) ([]ContentMatch, error) {
	limit := m.maxPerFile
	if budget < limit {
		limit = budget
	}
	if limit <= 0 {
		return nil, nil
	}

	var matches []ContentMatch
	err := r.ReadLines(path, func(lineNumber uint64, line string) bool {
		if lineNumber%1024 == 0 && ctx.Err() != nil {
			return false
		}
		matches = m.MatchLine(matches, lineNumber, line, limit-len(matches))
		return len(matches) < limit
	})
	return matches, err
}
