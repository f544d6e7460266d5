package search

import (
	"path/filepath"
	"strings"
)

// IgnoreRules holds an ordered list of gitignore rules. Later rules override
// earlier ones, so a negation ("!keep.log") can re-include a path.
type IgnoreRules struct {
	rules []ignoreRule
}

type ignoreRule struct {
	glob     string // pattern with markers stripped
	negate   bool   // "!" prefix
	dirOnly  bool   // trailing "/"
	anchored bool   // leading "/"
	hasSlash bool   // "/" somewhere inside the glob
	base     string // directory the rule file lives in
	literal  string // set when the glob has no wildcards
	prefix   string // set for "foo*"
	suffix   string // set for "*foo"
}

// NewIgnoreRules returns an empty rule set.
func NewIgnoreRules() *IgnoreRules {
	return &IgnoreRules{}
}

// Clone copies the rule set so a child directory can extend it without
// touching the parent's rules.
func (r *IgnoreRules) Clone() *IgnoreRules {
	clone := NewIgnoreRules()
	if r != nil && len(r.rules) > 0 {
		clone.rules = make([]ignoreRule, len(r.rules))
		copy(clone.rules, r.rules)
	}
	return clone
}

// Len reports how many rules are loaded.
func (r *IgnoreRules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// AddPatterns parses the content of an ignore file whose rules are relative to base.
func (r *IgnoreRules) AddPatterns(content string, base string) {
	for _, line := range strings.Split(content, "\n") {
		if rule, ok := parseIgnoreLine(line, base); ok {
			r.rules = append(r.rules, rule)
		}
	}
}

func parseIgnoreLine(line string, base string) (ignoreRule, bool) {
	line = strings.TrimSuffix(line, "\r")
	line = trimUnescapedSpaces(line)
	if line == "" {
		return ignoreRule{}, false
	}

	// Comments and negations are detected before unescaping so "\#" and "\!" stay literal.
	if strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}
	rule := ignoreRule{base: base}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}

	line = unescapeIgnore(line)

	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.anchored = true
		line = line[1:]
	}
	if line == "" {
		return ignoreRule{}, false
	}

	rule.glob = line
	rule.hasSlash = strings.ContainsRune(line, '/')

	if strings.ContainsRune(line, '\\') {
		return rule, true
	}
	if !strings.ContainsAny(line, "*?[") {
		rule.literal = line
		return rule, true
	}
	if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "**") {
		if rest := line[1:]; rest != "" && !strings.ContainsAny(rest, "*?[") {
			rule.suffix = rest
		}
	}
	if strings.HasSuffix(line, "*") && !strings.HasSuffix(line, "**") {
		if head := line[:len(line)-1]; head != "" && !strings.ContainsAny(head, "*?[") {
			rule.prefix = head
		}
	}
	return rule, true
}

// unescapeIgnore drops each backslash and keeps the following byte verbatim.
func unescapeIgnore(line string) string {
	if !strings.ContainsRune(line, '\\') {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			i++
		}
		b.WriteByte(line[i])
	}
	return b.String()
}

// trimUnescapedSpaces removes trailing spaces unless the last one is escaped.
func trimUnescapedSpaces(line string) string {
	i := len(line) - 1
	for i >= 0 && line[i] == ' ' {
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			break
		}
		i--
	}
	return line[:i+1]
}

// Match reports whether a file path is ignored.
func (r *IgnoreRules) Match(path string) bool {
	return r.MatchWithType(path, false)
}

// MatchWithType reports whether path is ignored; isDir enables directory-only rules.
func (r *IgnoreRules) MatchWithType(path string, isDir bool) bool {
	if r == nil {
		return false
	}
	path = filepath.ToSlash(path)

	ignored := false
	for _, rule := range r.rules {
		if rule.matches(path, isDir) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func (rule ignoreRule) matches(path string, isDir bool) bool {
	if rule.dirOnly && !isDir {
		return false
	}

	checkPath := path
	if rule.base != "." {
		base := filepath.ToSlash(rule.base)
		if !strings.HasPrefix(path, base) {
			return false
		}
		checkPath = strings.TrimPrefix(path, base+"/")
		if checkPath == path {
			checkPath = filepath.Base(path)
		}
	}

	filename := checkPath
	if idx := strings.LastIndexByte(checkPath, '/'); idx >= 0 {
		filename = checkPath[idx+1:]
	}

	anyLevel := !rule.hasSlash && !rule.anchored

	if rule.literal != "" {
		if checkPath == rule.literal || (anyLevel && filename == rule.literal) {
			return true
		}
	}
	if rule.suffix != "" && !rule.anchored {
		if strings.HasSuffix(checkPath, rule.suffix) || (anyLevel && strings.HasSuffix(filename, rule.suffix)) {
			return true
		}
	}
	if rule.prefix != "" && !rule.anchored {
		if strings.HasPrefix(checkPath, rule.prefix) || (anyLevel && strings.HasPrefix(filename, rule.prefix)) {
			return true
		}
	}

	glob := rule.glob
	switch {
	case glob == "**":
		return true
	case strings.HasPrefix(glob, "**/"):
		return matchAnySuffix(strings.TrimPrefix(glob, "**/"), checkPath, !rule.hasSlash)
	case strings.HasSuffix(glob, "/**"):
		dir := strings.TrimSuffix(glob, "/**")
		return checkPath == dir || strings.HasPrefix(checkPath, dir+"/")
	}

	if strings.Contains(glob, "/**/") {
		if parts := strings.Split(glob, "/**/"); len(parts) == 2 {
			head, tail := parts[0], parts[1]
			if strings.HasPrefix(checkPath, head+"/") {
				return matchAnySuffix(tail, strings.TrimPrefix(checkPath, head+"/"), false)
			}
			if checkPath == head {
				return globMatch(tail, "")
			}
			return false
		}
	}

	if rule.anchored || rule.hasSlash {
		return globMatch(glob, checkPath)
	}

	// Unanchored, slash-free globs match at any depth.
	return matchAnySuffix(glob, checkPath, false)
}

// matchAnySuffix tries glob against path and against every suffix obtained by
// dropping leading components. withBase also tries the final component alone.
func matchAnySuffix(glob, path string, withBase bool) bool {
	if globMatch(glob, path) {
		return true
	}
	if withBase && globMatch(glob, filepath.Base(path)) {
		return true
	}
	for idx := strings.IndexByte(path, '/'); idx >= 0; idx = strings.IndexByte(path, '/') {
		path = path[idx+1:]
		if globMatch(glob, path) {
			return true
		}
	}
	return false
}

// globMatch implements fnmatch(3)-style matching where "*" and "?" never cross "/".
func globMatch(glob, path string) bool {
	return globMatchAt(glob, path, 0, 0)
}

func globMatchAt(glob, path string, gi, pi int) bool {
	for gi < len(glob) && pi < len(path) {
		gc, pc := glob[gi], path[pi]

		switch gc {
		case '*':
			if gi+1 < len(glob) && glob[gi+1] == '*' {
				gi++
				if globMatchAt(glob, path, gi+1, pi) {
					return true
				}
				return pc != '/' && globMatchAt(glob, path, gi, pi+1)
			}
			if gi+1 >= len(glob) {
				return !strings.Contains(path[pi:], "/")
			}
			if globMatchAt(glob, path, gi+1, pi) {
				return true
			}
			return pc != '/' && globMatchAt(glob, path, gi, pi+1)

		case '?':
			if pc == '/' {
				return false
			}
			gi++
			pi++

		case '[':
			end := closingBracket(glob, gi)
			if end == -1 {
				if pc != '[' {
					return false
				}
				gi++
				pi++
				continue
			}
			if !matchClass(glob[gi+1:end], pc) {
				return false
			}
			gi = end + 1
			pi++

		case '\\':
			if gi+1 >= len(glob) || glob[gi+1] != pc {
				return false
			}
			gi += 2
			pi++

		default:
			if gc != pc {
				return false
			}
			gi++
			pi++
		}
	}

	for gi < len(glob) && glob[gi] == '*' {
		gi++
	}
	return gi == len(glob) && pi >= len(path)
}

func closingBracket(glob string, open int) int {
	for i := open + 1; i < len(glob); i++ {
		switch glob[i] {
		case ']':
			return i
		case '\\':
			i++
		}
	}
	return -1
}

// matchClass tests c against a bracket body such as "abc", "a-z" or "!0-9".
func matchClass(class string, c byte) bool {
	negate := strings.HasPrefix(class, "!")
	if negate {
		class = class[1:]
	}

	matched := false
	for i := 0; i < len(class); {
		if i+2 < len(class) && class[i+1] == '-' {
			if c >= class[i] && c <= class[i+2] {
				matched = true
				break
			}
			i += 3
			continue
		}
		if class[i] == c {
			matched = true
			break
		}
		i++
	}
	return matched != negate
}
