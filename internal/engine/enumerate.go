package engine

import (
	"context"

	"golang.org/x/time/rate"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

// EnumerationResponse is the synchronous part of an enumeration. OperationID is
// zero when every entry fits in the first page and nothing will be streamed.
type EnumerationResponse struct {
	Path        string         `json:"path"`
	Entries     []fsutil.Entry `json:"entries"`
	Total       int            `json:"total"`
	OperationID uint64         `json:"operationId,omitempty"`
}

// Streaming reports whether the remaining entries arrive as events.
func (r EnumerationResponse) Streaming() bool {
	return r.OperationID != 0
}

// StartEnumeration lists root directories-first and by case-insensitive name.
// The first page is returned directly; the rest is streamed in paced chunks,
// the last one with Done set.
func (e *Engine) StartEnumeration(root string) (EnumerationResponse, error) {
	if err := e.validateRoot(root); err != nil {
		return EnumerationResponse{}, err
	}
	entries, err := fsutil.ListDirectory(e.provider, root)
	if err != nil {
		return EnumerationResponse{}, err
	}

	pageSize := e.cfg.Enumerate.PageSize
	resp := EnumerationResponse{Path: root, Entries: entries, Total: len(entries)}
	if len(entries) <= pageSize {
		e.observer.CandidatesScanned(KindEnumeration, len(entries))
		return resp, nil
	}
	resp.Entries = entries[:pageSize]
	rest := entries[pageSize:]

	op := e.registry.Start(KindEnumeration)
	resp.OperationID = op.ID
	e.spawn(op, root, ModeDelta, func(ctx context.Context, em emitter) (Outcome, int, error) {
		return e.streamEntries(ctx, em, rest, pageSize)
	})
	return resp, nil
}

func (e *Engine) streamEntries(ctx context.Context, em emitter, rest []fsutil.Entry, sent int) (Outcome, int, error) {
	chunkSize := e.cfg.Enumerate.ChunkSize
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay := e.cfg.Enumerate.ChunkDelay; delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	for len(rest) > 0 {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		n := chunkSize
		if n > len(rest) {
			n = len(rest)
		}
		chunk := rest[:n]
		rest = rest[n:]
		sent += n

		ev := Event{
			Mode:     ModeDelta,
			Entries:  chunk,
			Counters: Counters{TotalScanned: uint64(sent)},
		}
		if len(rest) == 0 {
			outcome, err := em.finish(ev)
			e.observer.CandidatesScanned(KindEnumeration, sent)
			return outcome, sent, err
		}
		if err := em.emit(ev); err != nil {
			return OutcomeFailed, sent, err
		}
		if em.op.Cancelled() {
			break
		}
	}

	// Cancelled before the last chunk.
	outcome, err := em.finish(Event{Mode: ModeDelta, Counters: Counters{TotalScanned: uint64(sent)}})
	e.observer.CandidatesScanned(KindEnumeration, sent)
	return outcome, sent, err
}
