package formz

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readWithin(t *testing.T, out <-chan []byte, d time.Duration) string {
	t.Helper()
	select {
	case v, ok := <-out:
		if !ok {
			t.Fatal("watch channel closed")
		}
		return string(v)
	case <-time.After(d):
		t.Fatal("timeout waiting for file contents")
	}
	return ""
}

func TestFileWatcher_EmitsInitialAndChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.txt")
	if err := os.WriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if got := readWithin(t, out, time.Second); got != "first" {
		t.Errorf("initial = %q", got)
	}

	if err := os.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readWithin(t, out, 2*time.Second); got != "second" {
		t.Errorf("update = %q", got)
	}
}

func TestFileWatcher_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	tmp := filepath.Join(dir, ".draft.tmp")
	if err := os.WriteFile(tmp, []byte("renamed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := readWithin(t, out, 2*time.Second); got != "renamed" {
		t.Errorf("after rename = %q", got)
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "draft.txt")).Watch(context.Background())
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
