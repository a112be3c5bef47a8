package tomlfile

import (
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name  string   `toml:"name"`
	Items []string `toml:"items"`
}

func TestReadMissingFile(t *testing.T) {
	var d doc
	found, err := Read(filepath.Join(t.TempDir(), "nope.toml"), &d)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if found {
		t.Fatal("expected found=false for missing file")
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.toml")
	if err := Write(path, doc{Name: "a", Items: []string{"x", "y"}}, 0o600); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}

	var got doc
	found, err := Read(path, &got)
	if err != nil || !found {
		t.Fatalf("Read = (%v, %v)", found, err)
	}
	if got.Name != "a" || len(got.Items) != 2 {
		t.Fatalf("unexpected doc %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestReadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("name = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	var d doc
	found, err := Read(path, &d)
	if !found || err == nil {
		t.Fatalf("Read = (%v, %v), want found with error", found, err)
	}
}

func TestRemoveMissingIsNil(t *testing.T) {
	if err := Remove(filepath.Join(t.TempDir(), "gone.toml")); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
}
