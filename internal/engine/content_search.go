package engine

import (
	"context"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
	"github.com/kk-code-lab/rscan/internal/search"
)

// ContentSearchRequest describes a content search.
type ContentSearchRequest struct {
	Query         string `json:"query"`
	Root          string `json:"root"`
	CaseSensitive bool   `json:"caseSensitive"`
	RegexMode     bool   `json:"regexMode"`
	MaxResults    int    `json:"maxResults"`
}

// StartContentSearch starts a streaming search for req.Query inside the text
// files below req.Root, honouring ignore files. Events carry per-file deltas.
// An invalid pattern is reported as *InvalidPatternError before any id is allocated.
func (e *Engine) StartContentSearch(req ContentSearchRequest) (uint64, error) {
	if err := e.validateRoot(req.Root); err != nil {
		return 0, err
	}
	if req.Query == "" {
		return 0, ErrEmptyQuery
	}
	matcher, err := search.NewContentMatcher(search.ContentQuery{
		Pattern:       req.Query,
		CaseSensitive: req.CaseSensitive,
		Regex:         req.RegexMode,
	}, e.cfg.Content.MaxMatchesPerFile)
	if err != nil {
		return 0, err
	}
	maxResults := ClampMaxResults(req.MaxResults)
	root := req.Root

	op := e.registry.Start(KindContentSearch)
	e.spawn(op, root, ModeDelta, func(ctx context.Context, em emitter) (Outcome, int, error) {
		collector := newContentCollector(e.cfg.Content.BatchFiles, maxResults)
		var emitErr error

		scanned, walkErr := e.walker(root, false, true).Walk(ctx, func(c search.Candidate) bool {
			if fsutil.IsBinaryPath(c.AbsPath) {
				return true
			}
			collector.Searched()

			// A read failure keeps the hits found before it.
			matches, _ := matcher.MatchFile(ctx, e.reader, c.AbsPath, collector.Budget())
			if len(matches) == 0 {
				return !em.op.Cancelled()
			}

			flush := collector.Add(search.ContentResult{
				Path:         c.AbsPath,
				RelativePath: c.RelPath,
				Matches:      matches,
			})
			if flush {
				emitErr = em.emit(Event{Mode: ModeDelta, Files: collector.Take(), Counters: collector.Counters()})
			}
			return emitErr == nil && !collector.Exhausted() && !em.op.Cancelled()
		})
		e.observer.CandidatesScanned(KindContentSearch, scanned)
		if emitErr != nil {
			return OutcomeFailed, scanned, emitErr
		}
		if walkErr != nil && !em.op.Cancelled() {
			return OutcomeFailed, scanned, walkErr
		}

		outcome, err := em.finish(Event{
			Mode:     ModeDelta,
			Files:    collector.Take(),
			Counters: collector.Counters(),
		})
		return outcome, scanned, err
	})
	return op.ID, nil
}
