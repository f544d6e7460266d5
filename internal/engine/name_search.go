package engine

import (
	"context"
	"strings"

	"github.com/kk-code-lab/rscan/internal/search"
)

// NameSearchResponse is the result of a synchronous name search.
type NameSearchResponse struct {
	Results      []search.NameResult `json:"results"`
	TotalScanned uint64              `json:"totalScanned"`
}

func (e *Engine) validateNameSearch(query, root string) error {
	if err := e.validateRoot(root); err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// StartNameSearch starts a streaming fuzzy search for query below root and
// returns its operation id. Events carry snapshots of the best results so far;
// the terminal event is omitted when the operation is cancelled.
func (e *Engine) StartNameSearch(query, root string, limit int) (uint64, error) {
	if err := e.validateNameSearch(query, root); err != nil {
		return 0, err
	}
	limit = ClampLimit(limit)
	matcher := search.NewNameMatcher(e.scorer, query)

	op := e.registry.Start(KindNameSearch)
	e.spawn(op, root, ModeSnapshot, func(ctx context.Context, em emitter) (Outcome, int, error) {
		collector := newNameCollector(limit, e.cfg.Name.BatchSize)
		var emitErr error

		_, walkErr := e.walker(root, true, false).Walk(ctx, func(c search.Candidate) bool {
			score, ok := matcher.ScoreName(c.Name)
			if !collector.Add(c, score, ok) {
				return true
			}
			if top := collector.Snapshot(); len(top) > 0 {
				emitErr = em.emit(Event{Mode: ModeSnapshot, Names: top, Counters: collector.Counters()})
			}
			return emitErr == nil && !em.op.Cancelled()
		})
		scanned := int(collector.scanned)
		e.observer.CandidatesScanned(KindNameSearch, scanned)
		if emitErr != nil {
			return OutcomeFailed, scanned, emitErr
		}
		if walkErr != nil && !em.op.Cancelled() {
			return OutcomeFailed, scanned, walkErr
		}

		outcome, err := em.finish(Event{
			Mode:     ModeSnapshot,
			Names:    collector.Snapshot(),
			Counters: collector.Counters(),
		})
		return outcome, scanned, err
	})
	return op.ID, nil
}

// NameSearch runs a fuzzy search to completion and returns the best limit
// results sorted by non-increasing score. It emits no events.
func (e *Engine) NameSearch(query, root string, limit int) (NameSearchResponse, error) {
	return e.NameSearchContext(context.Background(), query, root, limit)
}

// NameSearchContext is NameSearch bounded by ctx. A cancelled ctx yields the
// results gathered so far together with ctx.Err().
func (e *Engine) NameSearchContext(ctx context.Context, query, root string, limit int) (NameSearchResponse, error) {
	if err := e.validateNameSearch(query, root); err != nil {
		return NameSearchResponse{}, err
	}
	limit = ClampLimit(limit)
	matcher := search.NewNameMatcher(e.scorer, query)
	collector := newNameCollector(limit, e.cfg.Name.BatchSize)

	_, err := e.walker(root, true, false).Walk(ctx, func(c search.Candidate) bool {
		score, ok := matcher.ScoreName(c.Name)
		if collector.Add(c, score, ok) {
			// Keep the working set bounded.
			collector.Snapshot()
		}
		return true
	})
	e.observer.CandidatesScanned(KindNameSearch, int(collector.scanned))

	return NameSearchResponse{
		Results:      collector.Snapshot(),
		TotalScanned: collector.scanned,
	}, err
}
