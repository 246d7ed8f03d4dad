package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "t.tmpl", "one")
	other := writeFile(t, dir, "other.txt", "ignored")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32

	done := make(chan error, 1)

	go func() {
		done <- watch(ctx, []string{file, "-"}, func(context.Context) { runs.Add(1) })
	}()

	waitFor := func(n int32) {
		t.Helper()

		deadline := time.Now().Add(5 * time.Second)
		for runs.Load() < n {
			if time.Now().After(deadline) {
				t.Fatalf("got %d runs, want %d", runs.Load(), n)
			}

			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor(1)

	// Give the watcher time to settle before changing files.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(other, []byte("still ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{"two", "three", "four"} {
		if err := os.WriteFile(file, []byte(s), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(2)

	time.Sleep(3 * debounce)

	if n := runs.Load(); n != 2 {
		t.Errorf("burst of writes caused %d runs, want 2", n)
	}

	// Replace the file by rename, as editors do.
	tmp := filepath.Join(dir, "t.tmpl.swp")
	writeFile(t, dir, filepath.Base(tmp), "five")

	if err := os.Rename(tmp, file); err != nil {
		t.Fatal(err)
	}

	waitFor(3)

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatch_NoFiles(t *testing.T) {
	err := watch(context.Background(), []string{"-"}, func(context.Context) {
		t.Error("run called without files")
	})
	if !errors.Is(err, ErrWatch) {
		t.Errorf("watch() = %v, want %v", err, ErrWatch)
	}
}
