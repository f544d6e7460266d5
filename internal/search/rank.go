package search

import (
	"sort"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

// NewNameResult builds a scored result for c. order is the arrival position
// within the operation and breaks remaining ties.
func NewNameResult(c Candidate, score uint32, order int) NameResult {
	return NameResult{
		Name:         c.Name,
		Path:         c.AbsPath,
		RelativePath: c.RelPath,
		Score:        score,
		Kind:         fsutil.KindOf(c.IsDir),
		order:        order,
	}
}

// compareNameResults orders by score descending, then shorter relative path,
// then arrival order. It returns <0 when a ranks before b.
func compareNameResults(a, b NameResult) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	if la, lb := len(a.RelativePath), len(b.RelativePath); la != lb {
		return la - lb
	}
	return a.order - b.order
}

// SortNameResults sorts results best first. The order is total, so repeated
// sorts of the same set agree.
func SortNameResults(results []NameResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return compareNameResults(results[i], results[j]) < 0
	})
}
