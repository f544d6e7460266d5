package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/rscan/internal/search"
)

func requireSingleTerminal(t *testing.T, events []Event) {
	t.Helper()
	require.NotEmpty(t, events)
	for i, ev := range events {
		if i < len(events)-1 {
			require.False(t, ev.Done, "only the last event may be terminal")
		}
	}
	require.True(t, events[len(events)-1].Done, "last event must be terminal")
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 1, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(0))
	assert.Equal(t, 42, ClampLimit(42))
	assert.Equal(t, 100, ClampLimit(101))

	assert.Equal(t, 1, ClampMaxResults(-1))
	assert.Equal(t, 1, ClampMaxResults(0))
	assert.Equal(t, 500, ClampMaxResults(500))
	assert.Equal(t, 1000, ClampMaxResults(5000))
}

func TestNameSearchFindsMatchingNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"hello_world.txt": "",
		"goodbye.txt":     "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(root, "hello_folder"), 0o755))

	for _, parallel := range []bool{false, true} {
		cfg := testConfig()
		cfg.Walk.Parallel = parallel
		e := New(cfg, nil)

		resp, err := e.NameSearch("hello", root, 10)
		require.NoError(t, err)

		names := make([]string, 0, len(resp.Results))
		for _, r := range resp.Results {
			names = append(names, r.Name)
		}
		assert.ElementsMatch(t, []string{"hello_folder", "hello_world.txt"}, names, "parallel=%v", parallel)
		assert.NotContains(t, names, "goodbye.txt")
		assert.Equal(t, uint64(3), resp.TotalScanned)

		for _, r := range resp.Results {
			if r.Name == "hello_folder" {
				assert.Equal(t, "directory", string(r.Kind))
				assert.Equal(t, filepath.Join(root, "hello_folder"), r.Path)
			}
		}
	}
}

func TestNameSearchResultsAreSortedAndClamped(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 150; i++ {
		files[fmt.Sprintf("dir%d/report_%03d.md", i%5, i)] = ""
	}
	files["report"] = ""
	files["report.md"] = ""
	writeFiles(t, root, files)

	e := New(testConfig(), nil)

	resp, err := e.NameSearch("report", root, 500)
	require.NoError(t, err)
	require.Len(t, resp.Results, 100, "limit is clamped to 100")
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}
	assert.Equal(t, "report", resp.Results[0].Name)
	assert.Equal(t, "report.md", resp.Results[1].Name)

	resp, err = e.NameSearch("report", root, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1, "limit 0 is clamped to 1")
}

func TestNameSearchValidation(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFiles(t, root, map[string]string{"plain.txt": "x"})

	e := New(testConfig(), nil)

	_, err := e.StartNameSearch("x", filepath.Join(root, "missing"), 10)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.StartNameSearch("x", file, 10)
	assert.ErrorIs(t, err, ErrNotADirectory)

	_, err = e.StartNameSearch("  ", root, 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = e.NameSearch("", root, 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	assert.Equal(t, 0, e.Registry().Active())
	assert.Equal(t, uint64(1), e.Registry().Start(KindNameSearch).ID, "failed starts never allocate an id")
}

func TestStartNameSearchStreamsSnapshots(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 250; i++ {
		files[fmt.Sprintf("file_%03d.txt", i)] = ""
	}
	writeFiles(t, root, files)

	sink := &recordingSink{}
	obs := newRecordingObserver()
	e := New(testConfig(), sink, WithObserver(obs))

	id, err := e.StartNameSearch("file", root, 20)
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)
	require.Len(t, events, 3, "two batch boundaries plus the terminal event")

	for _, ev := range events {
		assert.Equal(t, KindNameSearch, ev.Kind)
		assert.Equal(t, ModeSnapshot, ev.Mode)
		assert.LessOrEqual(t, len(ev.Names), 20)
		for i := 1; i < len(ev.Names); i++ {
			assert.GreaterOrEqual(t, ev.Names[i-1].Score, ev.Names[i].Score)
		}
	}
	assert.Equal(t, uint64(100), events[0].Counters.TotalScanned)
	assert.Equal(t, uint64(250), events[2].Counters.TotalScanned)
	assert.Len(t, events[2].Names, 20)

	_, ok := e.Registry().Lookup(id)
	assert.False(t, ok, "completed operations leave the registry")
	assert.Equal(t, []Outcome{OutcomeCompleted}, obs.outcomesFor(KindNameSearch))
	assert.Equal(t, 3, obs.emitted[KindNameSearch])
	assert.Equal(t, 250, obs.scanned[KindNameSearch])
}

func TestStartNameSearchWithoutMatchesStillTerminates(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"alpha.txt": ""})

	sink := &recordingSink{}
	e := New(testConfig(), sink)

	id, err := e.StartNameSearch("zzz", root, 10)
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Empty(t, events[0].Names)
	assert.Equal(t, uint64(1), events[0].Counters.TotalScanned)
}

func TestCancelledNameSearchEmitsNoTerminalEvent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"hello.txt": ""})

	g := newGate()
	sink := &recordingSink{}
	obs := newRecordingObserver()
	e := New(testConfig(), sink, WithProvider(blockingProvider{gate: g}), WithObserver(obs))

	id, err := e.StartNameSearch("hello", root, 10)
	require.NoError(t, err)

	<-g.reached
	e.Cancel(id)
	e.Cancel(id)
	close(g.release)
	e.Wait()

	assert.Empty(t, sink.eventsFor(id))
	_, ok := e.Registry().Lookup(id)
	assert.False(t, ok)
	assert.Equal(t, []Outcome{OutcomeCancelled}, obs.outcomesFor(KindNameSearch))

	e.Cancel(id)
	e.Cancel(12345)
}

func TestContentSearchStopsAtMaxResults(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt": "TODO one\ntodo two\nTODO three\n",
		"b.txt": "x todo y TODO\n",
		"c.txt": "ToDo\ntodo\n",
	})

	sink := &recordingSink{}
	e := New(testConfig(), sink)

	id, err := e.StartContentSearch(ContentSearchRequest{
		Query:      "TODO",
		Root:       root,
		MaxResults: 5,
	})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)

	total := 0
	for _, ev := range events {
		assert.Equal(t, ModeDelta, ev.Mode)
		for _, file := range ev.Files {
			total += len(file.Matches)
		}
	}
	assert.Equal(t, 5, total)
	final := events[len(events)-1]
	assert.Equal(t, uint64(5), final.Counters.TotalMatches)
	assert.LessOrEqual(t, final.Counters.FilesSearched, uint64(3))
}

func TestContentSearchReportsOriginalLineText(t *testing.T) {
	root := t.TempDir()
	line := "\tconst answer = compute(42) // see (notes)  "
	writeFiles(t, root, map[string]string{
		"src/main.go": "package main\n" + line + "\r\n",
		"image.png":   "compute(42)",
	})

	sink := &recordingSink{}
	e := New(testConfig(), sink)

	id, err := e.StartContentSearch(ContentSearchRequest{
		Query:         "compute(42)",
		Root:          root,
		CaseSensitive: true,
		MaxResults:    100,
	})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)

	var files []search.ContentResult
	for _, ev := range events {
		files = append(files, ev.Files...)
	}
	require.Len(t, files, 1, "binary extensions are skipped")
	assert.Equal(t, filepath.Join("src", "main.go"), files[0].RelativePath)

	require.Len(t, files[0].Matches, 1)
	hit := files[0].Matches[0]
	assert.Equal(t, line, hit.LineContent)
	assert.Equal(t, uint64(2), hit.LineNumber)
	assert.Less(t, hit.MatchStart, hit.MatchEnd)
	assert.Equal(t, "compute(42)", hit.LineContent[hit.MatchStart:hit.MatchEnd])
	assert.Equal(t, uint64(hit.MatchStart+1), hit.Column)

	final := events[len(events)-1]
	assert.Equal(t, uint64(1), final.Counters.FilesSearched)
}

func TestContentSearchKeepsHitsBeforeReadError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"broken.txt": "placeholder"})

	sink := &recordingSink{}
	e := New(testConfig(), sink, WithLineReader(truncatedReader{
		lines: []string{"TODO first", "nothing", "TODO second"},
		err:   errors.New("read failed"),
	}))

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "todo", Root: root, MaxResults: 100})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)

	var files []search.ContentResult
	for _, ev := range events {
		files = append(files, ev.Files...)
	}
	require.Len(t, files, 1)
	require.Len(t, files[0].Matches, 2)
	assert.Equal(t, uint64(3), files[0].Matches[1].LineNumber)

	final := events[len(events)-1]
	assert.Equal(t, uint64(2), final.Counters.TotalMatches)
	assert.Equal(t, uint64(1), final.Counters.FilesSearched)
}

func TestContentSearchRespectsIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".gitignore":      "generated/\n",
		"generated/x.txt": "needle",
		"kept.txt":        "needle",
	})

	sink := &recordingSink{}
	e := New(testConfig(), sink)

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "needle", Root: root, MaxResults: 10})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)
	var paths []string
	for _, ev := range events {
		for _, f := range ev.Files {
			paths = append(paths, f.RelativePath)
		}
	}
	assert.Equal(t, []string{"kept.txt"}, paths)
}

func TestContentSearchFlushesDeltaBatches(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 25; i++ {
		files[fmt.Sprintf("f%02d.txt", i)] = "match here\n"
	}
	writeFiles(t, root, files)

	sink := &recordingSink{}
	e := New(testConfig(), sink)

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "match", Root: root, MaxResults: 1000})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	requireSingleTerminal(t, events)
	require.Len(t, events, 3)
	assert.Len(t, events[0].Files, 10)
	assert.Len(t, events[1].Files, 10)
	assert.Len(t, events[2].Files, 5)

	seen := map[string]bool{}
	for _, ev := range events {
		for _, f := range ev.Files {
			assert.False(t, seen[f.Path], "delta batches never repeat a file")
			seen[f.Path] = true
		}
	}
	assert.Equal(t, uint64(25), events[2].Counters.TotalMatches)
}

func TestContentSearchValidation(t *testing.T) {
	root := t.TempDir()
	e := New(testConfig(), nil)

	_, err := e.StartContentSearch(ContentSearchRequest{Query: "(", Root: root, RegexMode: true})
	var patternErr *InvalidPatternError
	require.True(t, errors.As(err, &patternErr), "got %v", err)
	assert.Equal(t, "(", patternErr.Pattern)

	_, err = e.StartContentSearch(ContentSearchRequest{Query: "", Root: root})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = e.StartContentSearch(ContentSearchRequest{Query: "x", Root: filepath.Join(root, "nope")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, uint64(1), e.Registry().Start(KindContentSearch).ID, "failed starts never allocate an id")
}

func TestCancelledContentSearchEmitsNoTerminalEvent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle\n", "b.txt": "needle\n"})

	g := newGate()
	sink := &recordingSink{}
	e := New(testConfig(), sink, WithLineReader(blockingReader{gate: g, next: newDecoder()}))

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "needle", Root: root, MaxResults: 10})
	require.NoError(t, err)

	<-g.reached
	e.Cancel(id)
	close(g.release)
	e.Wait()

	for _, ev := range sink.eventsFor(id) {
		assert.False(t, ev.Done, "cancelled operations never emit a terminal event")
	}
	_, ok := e.Registry().Lookup(id)
	assert.False(t, ok)
}

func TestClosedSinkFailsOperationWithEmptyTerminalEvent(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 12; i++ {
		files[fmt.Sprintf("f%02d.txt", i)] = "needle\n"
	}
	writeFiles(t, root, files)

	sink := &recordingSink{fail: func(ev Event) error {
		if ev.Done {
			return nil
		}
		return ErrSinkClosed
	}}
	obs := newRecordingObserver()
	e := New(testConfig(), sink, WithObserver(obs))

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "needle", Root: root, MaxResults: 100})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	require.Len(t, events, 2, "failed batch then degraded terminal event")
	assert.False(t, events[0].Done)
	assert.True(t, events[1].Done)
	assert.Empty(t, events[1].Files)
	assert.Equal(t, []Outcome{OutcomeFailed}, obs.outcomesFor(KindContentSearch))
	assert.Equal(t, 0, e.Registry().Active())
}

func TestPanicInWorkerProducesEmptyTerminalEvent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle\n"})

	sink := &recordingSink{}
	obs := newRecordingObserver()
	e := New(testConfig(), sink, WithLineReader(panickingReader{}), WithObserver(obs))

	id, err := e.StartContentSearch(ContentSearchRequest{Query: "needle", Root: root, MaxResults: 10})
	require.NoError(t, err)
	e.Wait()

	events := sink.eventsFor(id)
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Empty(t, events[0].Files)
	assert.Equal(t, []Outcome{OutcomeFailed}, obs.outcomesFor(KindContentSearch))
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.NotNil(t, DefaultBroadcaster())
}
