package engine

import (
	"github.com/kk-code-lab/rscan/internal/search"
)

// nameCollector keeps the best name results seen so far. The 2*limit cap on
// the working set holds at batch boundaries: Add only appends, so between two
// Snapshot calls it may hold up to 2*limit+batchSize entries.
type nameCollector struct {
	limit     int
	batchSize int

	working   []search.NameResult
	sinceLast int
	scanned   uint64
	order     int
}

func newNameCollector(limit, batchSize int) *nameCollector {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &nameCollector{
		limit:     limit,
		batchSize: batchSize,
		working:   make([]search.NameResult, 0, 2*limit+batchSize),
	}
}

// Add records one scanned candidate and reports whether a batch boundary was
// reached. It never trims; callers are expected to Snapshot at each boundary.
func (c *nameCollector) Add(candidate search.Candidate, score uint32, matched bool) bool {
	c.scanned++
	c.sinceLast++
	if matched {
		c.working = append(c.working, search.NewNameResult(candidate, score, c.order))
		c.order++
	}
	if c.sinceLast >= c.batchSize {
		c.sinceLast = 0
		return true
	}
	return false
}

// Snapshot sorts the working set, trims it and returns a copy of the current top limit.
func (c *nameCollector) Snapshot() []search.NameResult {
	search.SortNameResults(c.working)
	if keep := 2 * c.limit; len(c.working) > keep {
		c.working = c.working[:keep]
	}

	n := len(c.working)
	if n > c.limit {
		n = c.limit
	}
	top := make([]search.NameResult, n)
	copy(top, c.working[:n])
	return top
}

func (c *nameCollector) Counters() Counters {
	return Counters{TotalScanned: c.scanned}
}

// contentCollector accumulates per-file results and hands them out as deltas.
type contentCollector struct {
	batchFiles int
	maxResults int

	pending       []search.ContentResult
	filesSearched uint64
	totalMatches  uint64
}

func newContentCollector(batchFiles, maxResults int) *contentCollector {
	if batchFiles <= 0 {
		batchFiles = 10
	}
	return &contentCollector{
		batchFiles: batchFiles,
		maxResults: maxResults,
		pending:    make([]search.ContentResult, 0, batchFiles),
	}
}

// Searched counts a file whose content was examined.
func (c *contentCollector) Searched() {
	c.filesSearched++
}

// Budget is how many more matches may be collected.
func (c *contentCollector) Budget() int {
	return c.maxResults - int(c.totalMatches)
}

// Exhausted reports whether the global match ceiling has been reached.
func (c *contentCollector) Exhausted() bool {
	return c.Budget() <= 0
}

// Add records a file with matches and reports whether a batch should be flushed.
func (c *contentCollector) Add(result search.ContentResult) bool {
	if len(result.Matches) == 0 {
		return false
	}
	c.totalMatches += uint64(len(result.Matches))
	c.pending = append(c.pending, result)
	return len(c.pending) >= c.batchFiles
}

// Take returns and clears the pending files.
func (c *contentCollector) Take() []search.ContentResult {
	out := c.pending
	c.pending = make([]search.ContentResult, 0, c.batchFiles)
	return out
}

func (c *contentCollector) Counters() Counters {
	return Counters{
		FilesSearched: c.filesSearched,
		TotalMatches:  c.totalMatches,
	}
}
