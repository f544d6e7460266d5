package search

import (
	"context"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

// NameMatcher scores a candidate by its base name.
type NameMatcher interface {
	ScoreName(name string) (uint32, bool)
}

// FileMatcher finds line-level hits inside a candidate file.
type FileMatcher interface {
	MatchFile(ctx context.Context, r fsutil.LineReader, path string, budget int) ([]ContentMatch, error)
}

// BoundNameMatcher pairs a scorer with a prepared query.
type BoundNameMatcher struct {
	scorer *NameScorer
	query  NameQuery
}

// NewNameMatcher prepares query for repeated scoring. A nil scorer uses the defaults.
func NewNameMatcher(scorer *NameScorer, query string) BoundNameMatcher {
	if scorer == nil {
		scorer = NewNameScorer()
	}
	return BoundNameMatcher{scorer: scorer, query: PrepareNameQuery(query)}
}

func (m BoundNameMatcher) ScoreName(name string) (uint32, bool) {
	return m.scorer.Score(m.query, name)
}

var (
	_ NameMatcher = BoundNameMatcher{}
	_ FileMatcher = (*ContentMatcher)(nil)
)
