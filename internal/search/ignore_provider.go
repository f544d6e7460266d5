package search

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ignoreFileNames are read in every directory, lowest priority first so later
// files can re-include paths with negations.
var ignoreFileNames = []string{".gitignore", ".ignore", ".rscanignore"}

// ignoreTree resolves the effective rules of each directory of one walk. Rules
// are inherited from the parent directory and extended with the directory's
// own ignore files. Parallel workers share a tree.
type ignoreTree struct {
	root string

	mu    sync.RWMutex
	byDir map[string]*IgnoreRules
}

// newIgnoreTree seeds the root rules from the user's global excludes (when
// includeGlobal is set), .git/info/exclude and the root ignore files.
func newIgnoreTree(root string, includeGlobal bool) *ignoreTree {
	base := NewIgnoreRules()
	if includeGlobal {
		for _, file := range globalExcludeFiles(root) {
			addIgnoreFile(base, file, root)
		}
	}
	addIgnoreFile(base, filepath.Join(root, ".git", "info", "exclude"), root)
	addDirIgnoreFiles(base, root)

	return &ignoreTree{
		root:  root,
		byDir: map[string]*IgnoreRules{".": base},
	}
}

// RulesFor returns the rules in effect inside relDir (relative to the root).
func (t *ignoreTree) RulesFor(relDir string) *IgnoreRules {
	key := normalizeDirKey(relDir)

	t.mu.RLock()
	rules, ok := t.byDir[key]
	t.mu.RUnlock()
	if ok {
		return rules
	}

	rules = t.RulesFor(parentDirKey(key)).Clone()
	addDirIgnoreFiles(rules, filepath.Join(t.root, filepath.FromSlash(key)))

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byDir[key]; ok {
		return existing
	}
	t.byDir[key] = rules
	return rules
}

func addDirIgnoreFiles(rules *IgnoreRules, dir string) {
	for _, name := range ignoreFileNames {
		addIgnoreFile(rules, filepath.Join(dir, name), dir)
	}
}

// addIgnoreFile appends the patterns of file, anchored at base. Missing or
// empty files are skipped.
func addIgnoreFile(rules *IgnoreRules, file, base string) bool {
	if file == "" {
		return false
	}
	data, err := os.ReadFile(file)
	if err != nil || len(data) == 0 {
		return false
	}
	rules.AddPatterns(string(data), base)
	return true
}

// globalExcludeFiles lists the user-level ignore files without duplicates:
// core.excludesFile from the repository config first, then the usual
// locations in the home directory.
func globalExcludeFiles(root string) []string {
	var files []string
	seen := make(map[string]bool)
	add := func(file string) {
		if file != "" && !seen[file] {
			seen[file] = true
			files = append(files, file)
		}
	}

	add(coreExcludesFile(root))
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".gitignore"))
		add(filepath.Join(home, ".gitignore_global"))
		add(filepath.Join(home, ".config", "git", "ignore"))
	}
	return files
}

// coreExcludesFile reads core.excludesFile from root/.git/config. Relative
// values resolve against root and a leading ~ against the home directory.
func coreExcludesFile(root string) string {
	f, err := os.Open(filepath.Join(root, ".git", "config"))
	if err != nil {
		return ""
	}
	defer func() {
		_ = f.Close()
	}()

	inCore := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", line[0] == '#', line[0] == ';':
			continue
		case line[0] == '[':
			inCore = strings.HasPrefix(strings.ToLower(line), "[core")
			continue
		case !inCore:
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "excludesfile") {
			continue
		}
		value = expandHome(strings.Trim(strings.TrimSpace(value), `"`))
		if value == "" {
			continue
		}
		if !filepath.IsAbs(value) {
			value = filepath.Join(root, value)
		}
		return value
	}
	return ""
}

func expandHome(value string) string {
	if value != "~" && !strings.HasPrefix(value, "~/") {
		return value
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return value
	}
	return filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
}

// normalizeDirKey turns a relative directory into a slash-separated cache key,
// "." for the root.
func normalizeDirKey(relDir string) string {
	cleaned := filepath.ToSlash(filepath.Clean(relDir))
	cleaned = strings.TrimPrefix(cleaned, "./")
	if cleaned == "" || cleaned == "." || cleaned == "/" {
		return "."
	}
	return cleaned
}

func parentDirKey(key string) string {
	parent := path.Dir(key)
	if parent == "/" {
		return "."
	}
	return parent
}
