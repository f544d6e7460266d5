package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flagConfig, flagLogLevel, flagParallel, flagJSON = "", "", false, false
	flagFindLimit = 20
	flagGrepCaseSensitive, flagGrepRegex, flagGrepColor = false, false, false
	flagGrepMaxResults, flagGrepWidth = 0, 160

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestFindPrintsRankedNames(t *testing.T) {
	root := writeTree(t, map[string]string{
		"hello.txt":        "",
		"docs/hello.md":    "",
		"docs/unrelated":   "",
		"say_hello_now.go": "",
	})

	out, err := execute(t, "find", "hello", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Both stems equal the query; the shorter base name ranks first.
	assert.Equal(t, []string{"docs/hello.md", "hello.txt", "say_hello_now.go"}, lines)
	assert.NotContains(t, out, "unrelated")
}

func TestFindReportsNoMatches(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": ""})

	out, err := execute(t, "find", "zzz", root)
	require.NoError(t, err)
	assert.Contains(t, out, "no matches for zzz")
}

func TestFindRejectsMissingRoot(t *testing.T) {
	_, err := execute(t, "find", "x", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestFindJSONEndsWithDoneEvent(t *testing.T) {
	root := writeTree(t, map[string]string{"hello.txt": ""})

	out, err := execute(t, "find", "hello", root, "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, true, last["done"])
	assert.Len(t, last["results"], 1)
}

func TestGrepPrintsMatchesAndSummary(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":  "package main\n\n// TODO: tidy\n",
		"notes.md": "nothing here\n",
	})

	out, err := execute(t, "grep", "todo", root)
	require.NoError(t, err)
	assert.Contains(t, out, "main.go:3:4: // TODO: tidy")
	assert.Contains(t, out, "-- 1 matches in 2 files")
}

func TestGrepColorHighlightsMatch(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "find the needle\n"})

	out, err := execute(t, "grep", "needle", root, "--color")
	require.NoError(t, err)
	assert.Contains(t, out, "find the "+colorMatch+"needle"+colorReset)
}

func TestGrepInvalidRegex(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "x\n"})

	_, err := execute(t, "grep", "(", root, "--regex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestLsListsEntries(t *testing.T) {
	root := writeTree(t, map[string]string{"b.txt": "12345", "a/inner.txt": ""})

	out, err := execute(t, "ls", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a/", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "b.txt"))
	assert.Contains(t, lines[1], " 5 ")
}
