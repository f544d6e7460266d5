package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListDirectorySortsDirectoriesFirst(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"beta.txt", "Alpha.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	for _, name := range []string{"zeta", "Gamma"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}

	entries, err := ListDirectory(nil, root)
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	got := strings.Join(names, ",")
	if got != "Gamma,zeta,Alpha.txt,beta.txt" {
		t.Fatalf("unexpected order %s", got)
	}
	if !entries[0].IsDir() || entries[2].IsDir() {
		t.Fatalf("unexpected kinds: %+v", entries)
	}
}

func TestEntryJSONZeroesDirectorySize(t *testing.T) {
	entry := Entry{Name: "src", Path: "/tmp/src", Kind: KindDirectory, Size: 4096}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"kind":"directory"`) || !strings.Contains(out, `"size":0`) {
		t.Fatalf("unexpected json %s", out)
	}
}
