package search

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// walkParallel fans directory reads out to a bounded worker pool and funnels
// candidates back to the caller's goroutine. Candidate order is not stable
// across runs.
func (w *Walker) walkParallel(ctx context.Context, visit func(Candidate) bool) (int, error) {
	walkCtx, stop := context.WithCancel(ctx)
	defer stop()

	workerCount := clampInt(w.opts.Workers, 1, MaxWalkWorkers)
	dirJobs := make(chan dirNode, clampInt(workerCount*8, 32, 1024))
	found := make(chan Candidate, clampInt(workerCount*64, 512, 16384))

	var pendingDirs atomic.Int64
	pendingDirs.Store(1)
	var closeDirJobsOnce sync.Once
	closeDirJobs := func() {
		closeDirJobsOnce.Do(func() {
			close(dirJobs)
		})
	}

	dirJobs <- dirNode{absPath: w.root, relPath: "."}

	g, gctx := errgroup.WithContext(walkCtx)
	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			stack := make([]dirNode, 0, 8)
			for {
				var node dirNode
				if len(stack) > 0 {
					node = stack[len(stack)-1]
					stack = stack[:len(stack)-1]
				} else {
					select {
					case <-gctx.Done():
						return nil
					case next, ok := <-dirJobs:
						if !ok {
							return nil
						}
						node = next
					}
				}

				children := w.processDir(gctx, node, found)
				// dirJobs is only closed once no directory is queued or in flight,
				// so no worker can be about to send on it.
				if pendingDirs.Add(int64(len(children))-1) == 0 {
					closeDirJobs()
				}

				for _, child := range children {
					select {
					case dirJobs <- child:
					default:
						stack = append(stack, child)
					}
				}
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(found)
	}()

	visited := 0
	for candidate := range found {
		if walkCtx.Err() != nil {
			break
		}
		visited++
		if !visit(candidate) || w.capReached(visited) {
			break
		}
	}

	stop()
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return visited, err
	}
	return visited, nil
}

// processDir reads one directory, sends its candidates to found and returns the
// subdirectories still to be walked.
func (w *Walker) processDir(ctx context.Context, node dirNode, found chan<- Candidate) []dirNode {
	entries, err := w.provider.ReadDir(node.absPath)
	if err != nil {
		return nil
	}
	rules := w.rulesFor(node.relPath)

	children := make([]dirNode, 0, 4)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return children
		}

		candidate, skip := w.candidateFor(node, entry, rules)
		if skip {
			continue
		}
		if candidate.IsDir {
			children = append(children, dirNode{absPath: candidate.AbsPath, relPath: candidate.RelPath})
			if !w.opts.IncludeDirs {
				continue
			}
		}

		select {
		case found <- candidate:
		case <-ctx.Done():
			return children
		}
	}
	return children
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
