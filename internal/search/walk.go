package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
)

const (
	// DefaultMaxCandidates bounds the work of a single walk.
	DefaultMaxCandidates = 10000
	// MaxWalkWorkers is the upper bound for the parallel walker pool.
	MaxWalkWorkers = 8
)

// deniedDirNames are build, VCS and dependency directories never descended into.
var deniedDirNames = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	"__pycache__":  {},
	".venv":        {},
	"venv":         {},
	".cache":       {},
	".npm":         {},
	".cargo":       {},
	"target":       {},
	"build":        {},
	"dist":         {},
	"out":          {},
	".idea":        {},
	".vscode":      {},
}

// shouldHideFromListingFn mirrors fs.ShouldHideFromListing for test overrides.
var shouldHideFromListingFn = fsutil.ShouldHideFromListing

// WalkOptions controls pruning and parallelism of a Walker.
type WalkOptions struct {
	// IncludeDirs emits directories as candidates in addition to descending into them.
	IncludeDirs bool
	// RespectIgnore applies .gitignore/.ignore/.rscanignore and .git/info/exclude rules.
	RespectIgnore bool
	// GlobalIgnore additionally loads the user's global excludes. Requires RespectIgnore.
	GlobalIgnore bool
	// MaxCandidates ends the walk after this many candidates; <= 0 means unlimited.
	MaxCandidates int
	// Workers > 1 selects the parallel walker, capped at MaxWalkWorkers.
	Workers int
	// Provider supplies directory listings; nil uses the host filesystem.
	Provider fsutil.Provider
}

// Walker enumerates candidates below a root directory.
type Walker struct {
	root     string
	opts     WalkOptions
	provider fsutil.Provider
	ignore   *ignoreTree
}

// NewWalker prepares a walk of root. Ignore files are loaded lazily per directory.
func NewWalker(root string, opts WalkOptions) *Walker {
	provider := opts.Provider
	if provider == nil {
		provider = fsutil.Default
	}
	if opts.Workers > MaxWalkWorkers {
		opts.Workers = MaxWalkWorkers
	}

	w := &Walker{
		root:     root,
		opts:     opts,
		provider: provider,
	}
	if opts.RespectIgnore {
		w.ignore = newIgnoreTree(root, opts.GlobalIgnore)
	}
	return w
}

// Root returns the directory the walker starts from.
func (w *Walker) Root() string {
	return w.root
}

// Walk calls visit for each candidate until the tree is exhausted, visit returns
// false, the candidate cap is reached, or ctx is cancelled. visit always runs on
// the calling goroutine. It returns the number of candidates visited and
// ctx.Err() when the walk was cut short by cancellation.
func (w *Walker) Walk(ctx context.Context, visit func(Candidate) bool) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if w.opts.Workers > 1 {
		return w.walkParallel(ctx, visit)
	}
	return w.walkBFS(ctx, visit)
}

type dirNode struct {
	absPath string
	relPath string
}

func (w *Walker) walkBFS(ctx context.Context, visit func(Candidate) bool) (int, error) {
	visited := 0
	queue := []dirNode{{absPath: w.root, relPath: "."}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return visited, err
		}

		node := queue[0]
		queue = queue[1:]

		entries, err := w.provider.ReadDir(node.absPath)
		if err != nil {
			continue
		}
		rules := w.rulesFor(node.relPath)

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return visited, err
			}

			candidate, skip := w.candidateFor(node, entry, rules)
			if skip {
				continue
			}
			if candidate.IsDir {
				queue = append(queue, dirNode{absPath: candidate.AbsPath, relPath: candidate.RelPath})
				if !w.opts.IncludeDirs {
					continue
				}
			}

			visited++
			if !visit(candidate) || w.capReached(visited) {
				return visited, nil
			}
		}
	}

	return visited, nil
}

func (w *Walker) capReached(visited int) bool {
	return w.opts.MaxCandidates > 0 && visited >= w.opts.MaxCandidates
}

func (w *Walker) rulesFor(relDir string) *IgnoreRules {
	if w.ignore == nil {
		return nil
	}
	return w.ignore.RulesFor(relDir)
}

// candidateFor applies the pruning rules to one directory entry.
func (w *Walker) candidateFor(parent dirNode, entry os.DirEntry, rules *IgnoreRules) (Candidate, bool) {
	name := entry.Name()
	absPath := filepath.Join(parent.absPath, name)
	if w.shouldSkip(name, entry.IsDir(), absPath, rules) {
		return Candidate{}, true
	}
	return Candidate{
		AbsPath: absPath,
		RelPath: joinRelPath(parent.relPath, name),
		Name:    name,
		IsDir:   entry.IsDir(),
	}, false
}

func (w *Walker) shouldSkip(name string, isDir bool, absPath string, rules *IgnoreRules) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return true
	}
	if isDir {
		if _, denied := deniedDirNames[name]; denied {
			return true
		}
	}
	if shouldHideFromListingFn(absPath, name) || fsutil.IsHidden(absPath, name) {
		return true
	}
	return rules != nil && rules.MatchWithType(absPath, isDir)
}

func joinRelPath(parent, child string) string {
	if parent == "." || parent == "" {
		if child == "" {
			return "."
		}
		return child
	}
	return filepath.Join(parent, child)
}
