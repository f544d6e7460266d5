// Package engine runs cancellable directory scans (fuzzy name search, content
// search and directory enumeration) and streams their results to a Sink.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kk-code-lab/rscan/internal/config"
	fsutil "github.com/kk-code-lab/rscan/internal/fs"
	"github.com/kk-code-lab/rscan/internal/logging"
	"github.com/kk-code-lab/rscan/internal/search"
)

const (
	maxNameLimit  = 100
	maxContentMax = 1000
)

// Engine owns the operation registry and the sink all operations report to.
type Engine struct {
	cfg      config.Config
	registry *Registry
	sink     Sink
	logger   *logging.Logger
	observer Observer
	provider fsutil.Provider
	reader   fsutil.LineReader
	scorer   *search.NameScorer

	wg sync.WaitGroup
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithProvider replaces the filesystem metadata provider.
func WithProvider(p fsutil.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithLineReader replaces the content decoder used by content search.
func WithLineReader(r fsutil.LineReader) Option {
	return func(e *Engine) {
		if r != nil {
			e.reader = r
		}
	}
}

// New creates an Engine emitting to sink. A nil sink discards events.
func New(cfg config.Config, sink Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = DiscardSink
	}
	e := &Engine{
		cfg:      cfg,
		registry: NewRegistry(),
		sink:     sink,
		logger:   logging.Noop(),
		observer: NopObserver{},
		provider: fsutil.Default,
		reader:   fsutil.TextDecoder{MaxFileSize: cfg.Walk.MaxFileSize},
		scorer:   search.NewNameScorer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultOnce        sync.Once
	defaultEngine      *Engine
	defaultBroadcaster *Broadcaster
)

// Default returns the process-wide engine, built on first use with the
// built-in configuration and a Broadcaster sink.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultBroadcaster = NewBroadcaster(0, nil)
		defaultEngine = New(config.Default(), defaultBroadcaster)
	})
	return defaultEngine
}

// DefaultBroadcaster returns the sink of Default.
func DefaultBroadcaster() *Broadcaster {
	Default()
	return defaultBroadcaster
}

// Registry exposes the operation registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Cancel asks operation id to stop. Unknown or finished ids are ignored.
func (e *Engine) Cancel(id uint64) {
	if e.registry.Cancel(id) {
		e.logger.Debug("operation cancel requested", "op", id)
	}
}

// Wait blocks until every background operation has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// validateRoot checks that root exists and is a directory.
func (e *Engine) validateRoot(root string) error {
	info, err := e.provider.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}
	return nil
}

func (e *Engine) walker(root string, includeDirs, respectIgnore bool) *search.Walker {
	return search.NewWalker(root, search.WalkOptions{
		IncludeDirs:   includeDirs,
		RespectIgnore: respectIgnore,
		GlobalIgnore:  e.cfg.Walk.GlobalIgnore,
		MaxCandidates: e.cfg.Walk.MaxCandidates,
		Workers:       e.cfg.WalkWorkers(),
		Provider:      e.provider,
	})
}

// ClampLimit bounds a name-search limit to [1, 100].
func ClampLimit(limit int) int {
	return clamp(limit, 1, maxNameLimit)
}

// ClampMaxResults bounds a content-search result ceiling to [1, 1000].
func ClampMaxResults(maxResults int) int {
	return clamp(maxResults, 1, maxContentMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// errAborted marks a run stopped by a fatal emission failure.
var errAborted = errors.New("operation aborted")

// emitter publishes the events of one operation. It is used from a single goroutine.
type emitter struct {
	e  *Engine
	op *Operation
}

// emit delivers ev unless the operation was cancelled. Only ErrSinkClosed is fatal.
func (em emitter) emit(ev Event) error {
	if em.op.Cancelled() {
		return nil
	}
	return em.send(ev)
}

func (em emitter) send(ev Event) error {
	ev.OperationID = em.op.ID
	ev.Kind = em.op.Kind
	if err := em.e.sink.Emit(ev); err != nil {
		if errors.Is(err, ErrSinkClosed) {
			return fmt.Errorf("%w: %w", errAborted, err)
		}
		em.e.logger.Debug("event not delivered", "op", em.op.ID, "kind", string(em.op.Kind), "error", err)
		return nil
	}
	em.e.observer.EventEmitted(em.op.Kind)
	return nil
}

// finish removes the operation from the registry and, unless it was
// cancelled, emits the terminal event.
func (em emitter) finish(ev Event) (Outcome, error) {
	if em.e.registry.Complete(em.op.ID) {
		return OutcomeCancelled, nil
	}
	ev.Done = true
	if err := em.send(ev); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeCompleted, nil
}

// runFunc performs an operation and returns how it ended and how many
// candidates it scanned. It owns the terminal event on success.
type runFunc func(ctx context.Context, em emitter) (Outcome, int, error)

// spawn runs fn in the background under supervision. A failure or panic still
// produces a best-effort empty terminal event unless the operation was cancelled.
func (e *Engine) spawn(op *Operation, root string, mode BatchMode, fn runFunc) {
	e.observer.OperationStarted(op.Kind)
	log := e.logger.WithOperation(op.ID, string(op.Kind))
	log.LogStart(op.Context(), root)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		em := emitter{e: e, op: op}
		outcome, scanned, err := e.supervise(op, em, fn)
		if err != nil {
			outcome = OutcomeFailed
			if !e.registry.Complete(op.ID) {
				_ = e.sink.Emit(Event{OperationID: op.ID, Kind: op.Kind, Mode: mode, Done: true})
			}
		}

		elapsed := time.Since(op.Started)
		e.observer.OperationFinished(op.Kind, outcome, elapsed)
		log.LogFinish(context.Background(), string(outcome), scanned, elapsed, err)
	}()
}

func (e *Engine) supervise(op *Operation, em emitter, fn runFunc) (outcome Outcome, scanned int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errAborted, r)
		}
	}()
	return fn(op.Context(), em)
}
