package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_ingestsCreatedDocument(t *testing.T) {
	dir := t.TempDir()
	var ingested recorder

	w := New([]string{dir}, []string{".pdf", ".txt"}, true, ingested.record, nil,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "ipc.txt"), []byte("Section 378"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.xyz"), []byte("skip"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	paths := ingested.snapshot()
	if len(paths) < 1 {
		t.Fatalf("expected at least one ingest callback, got %d", len(paths))
	}
	for _, p := range paths {
		if strings.HasSuffix(p, "notes.xyz") {
			t.Errorf("non-matching extension was ingested: %s", p)
		}
	}
}

func TestWatcher_removeCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crpc.txt")
	if err := os.WriteFile(path, []byte("arrest"), 0600); err != nil {
		t.Fatal(err)
	}

	var removed recorder
	w := New([]string{dir}, []string{".txt"}, true, nil, removed.record,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	paths := removed.snapshot()
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "crpc.txt") {
		t.Errorf("expected remove callback for crpc.txt, got %v", paths)
	}
}

func TestWatcher_newDirectoryPicksUpFiles(t *testing.T) {
	dir := t.TempDir()
	var ingested recorder

	w := New([]string{dir}, []string{".txt"}, true, ingested.record, nil,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "statutes")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "ipc.txt"), []byte("theft"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	found := false
	for _, p := range ingested.snapshot() {
		if strings.HasSuffix(p, "ipc.txt") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ipc.txt from new directory to be ingested, got %v", ingested.snapshot())
	}
}

func TestWatcher_addRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, []string{".txt"}, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || filepath.Clean(dirs[0]) != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}
	// Adding the same root twice is a no-op.
	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 1 {
		t.Errorf("duplicate add changed roots: %v", w.Directories())
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_syncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.xyz"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	var ingested recorder
	w := New([]string{dir}, []string{".txt"}, true, ingested.record, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()

	paths := ingested.snapshot()
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "a.txt") {
		t.Errorf("expected only a.txt, got %v", paths)
	}
}

func TestWatcher_startCreatesMissingRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "docs", "incoming")

	w := New([]string{root}, []string{".txt"}, true, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/ipc.pdf", []string{".pdf"}, true},
		{"/a/ipc.PDF", []string{".pdf"}, true},
		{"/a/ipc.pdf", []string{"pdf"}, true},
		{"/a/notes.md", []string{".pdf", ".txt"}, false},
		{"/a/anything", nil, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		if got := inDir(tt.dir, tt.path); got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
