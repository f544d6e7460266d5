package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/rscan/internal/config"
	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Walk.GlobalIgnore = false
	cfg.Enumerate.ChunkDelay = time.Millisecond
	return cfg
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// recordingSink keeps every event it is given.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	// fail, when set, decides the error returned for an event.
	fail func(Event) error
}

func (s *recordingSink) Emit(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.fail != nil {
		return s.fail(ev)
	}
	return nil
}

func (s *recordingSink) eventsFor(id uint64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.OperationID == id {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// recordingObserver counts telemetry callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	started  map[Kind]int
	outcomes map[Kind][]Outcome
	scanned  map[Kind]int
	emitted  map[Kind]int
	dropped  int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		started:  make(map[Kind]int),
		outcomes: make(map[Kind][]Outcome),
		scanned:  make(map[Kind]int),
		emitted:  make(map[Kind]int),
	}
}

func (o *recordingObserver) OperationStarted(kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started[kind]++
}

func (o *recordingObserver) OperationFinished(kind Kind, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[kind] = append(o.outcomes[kind], outcome)
}

func (o *recordingObserver) CandidatesScanned(kind Kind, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scanned[kind] += n
}

func (o *recordingObserver) EventEmitted(kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitted[kind]++
}

func (o *recordingObserver) EventDropped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func (o *recordingObserver) droppedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

func (o *recordingObserver) outcomesFor(kind Kind) []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outcome(nil), o.outcomes[kind]...)
}

// gate lets a test hold a background operation at a known point.
type gate struct {
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{reached: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	g.once.Do(func() { close(g.reached) })
	<-g.release
}

// blockingProvider holds the first ReadDir until the gate is released.
type blockingProvider struct {
	fsutil.OSProvider
	gate *gate
}

func (p blockingProvider) ReadDir(path string) ([]os.DirEntry, error) {
	p.gate.wait()
	return p.OSProvider.ReadDir(path)
}

// blockingReader holds every file read until the gate is released.
type blockingReader struct {
	gate *gate
	next fsutil.LineReader
}

func (r blockingReader) ReadLines(path string, fn func(uint64, string) bool) error {
	r.gate.wait()
	return r.next.ReadLines(path, fn)
}

// truncatedReader feeds lines and then fails as if the file broke mid-read.
type truncatedReader struct {
	lines []string
	err   error
}

func (r truncatedReader) ReadLines(_ string, fn func(uint64, string) bool) error {
	for i, line := range r.lines {
		if !fn(uint64(i+1), line) {
			return nil
		}
	}
	return r.err
}

type panickingReader struct{}

func (panickingReader) ReadLines(string, func(uint64, string) bool) error {
	panic("decoder exploded")
}
