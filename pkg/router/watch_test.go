package router

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherDebouncesGoChanges(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "health"), 0o755); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	changed := make(chan struct{}, 10)
	w, err := NewWatcher(root, func() error {
		calls.Add(1)
		changed <- struct{}{}
		return nil
	}, quietLogger, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Ignored: generated manifest and non-Go files.
	os.WriteFile(filepath.Join(root, GeneratedFile), []byte("package routes"), 0o644)
	os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)

	for i := 0; i < 3; i++ {
		os.WriteFile(filepath.Join(root, "health", "route.go"), []byte("package health"), 0o644)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called")
	}

	// A new directory is picked up and its files watched.
	sub := filepath.Join(root, "hospitals")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called for new directory")
	}
	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(sub, "route.go"), []byte("package hospitals"), 0o644)
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called for file in new directory")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := calls.Load(); n < 3 {
		t.Errorf("onChange called %d times, want at least 3", n)
	}
}

func TestNewWatcherMissingRoot(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), func() error { return nil }, quietLogger); err == nil {
		t.Fatal("expected error for missing root")
	}
}
