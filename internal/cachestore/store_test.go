package cachestore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestMaterializeAndExists(t *testing.T) {
	store := New(t.TempDir(), nil)
	idx := "foo.pdb/111111112222333344445555555555552/foo.pdb"

	if _, ok := store.Exists(idx); ok {
		t.Fatal("empty store should not contain the artifact")
	}

	path, err := store.Materialize(idx, strings.NewReader("pdb content"))
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	got, ok := store.Exists(idx)
	if !ok || got != path {
		t.Fatalf("Exists = (%q, %v), want (%q, true)", got, ok, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pdb content" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestMaterializeLayoutMirrorsIndexPath(t *testing.T) {
	root := t.TempDir()
	store := New(root, nil)

	path, err := store.Materialize("a.dll/4a5b25000/a.dll", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "a.dll", "4a5b25000", "a.dll")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestMaterializeLeavesNoStagingFiles(t *testing.T) {
	root := t.TempDir()
	store := New(root, nil)
	idx := "foo.pdb/1/foo.pdb"

	if _, err := store.Materialize(idx, strings.NewReader("bytes")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path(idx)))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".download-") {
			t.Errorf("staging file left behind: %s", e.Name())
		}
	}
}

func TestConcurrentMaterializeSameKey(t *testing.T) {
	store := New(t.TempDir(), nil)
	idx := "k32.dll/4a5b25000/k32.dll"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Materialize(idx, strings.NewReader("same bytes")); err != nil {
				t.Errorf("Materialize failed: %v", err)
			}
		}()
	}
	wg.Wait()

	path, ok := store.Exists(idx)
	if !ok {
		t.Fatal("artifact missing after concurrent writes")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "same bytes" {
		t.Errorf("artifact corrupted: %q", data)
	}
}

func TestMaterializeFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "origin.pdb")
	if err := os.WriteFile(src, []byte("redirected"), 0644); err != nil {
		t.Fatal(err)
	}

	store := New(t.TempDir(), nil)
	path, err := store.MaterializeFile("origin.pdb/2/origin.pdb", src)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "redirected" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestMaterializeFileMissingSource(t *testing.T) {
	store := New(t.TempDir(), nil)
	if _, err := store.MaterializeFile("x/1/x", "/nonexistent/path"); err == nil {
		t.Error("expected error for missing source")
	}
}
