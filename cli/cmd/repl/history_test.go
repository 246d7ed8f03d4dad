package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestHistory_AddLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"{a}", modeTmpl},
		{"list", modeCtrl},
		{" {b} ", modeTmpl},
		{"   ", modeTmpl},
		{"{a}", modeTmpl},
		{"{a}", modeTmpl},
		{"multi\nline", modeTmpl},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{" {b} ", modeTmpl},
		{"{a}", modeTmpl},
	}

	check := func(h *History) {
		t.Helper()

		got := h.Entries()
		if len(got) != len(want) {
			t.Fatalf("entries = %v, want %v", got, want)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	}

	check(h)

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	check(reloaded)

	if _, err := reloaded.Entry(len(want)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry past end: %v", err)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("C:quit\n{x}\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	if e, _ := h.Entry(1); e.Mode != modeTmpl || e.Line != "{x}" {
		t.Errorf("unprefixed entry = %+v", e)
	}
}

func TestHistory_Cap(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for i := range maxHistory + 5 {
		if err := h.Add(strconv.Itoa(i), modeTmpl); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Fatalf("Len() = %d, want %d", h.Len(), maxHistory)
	}

	if e, _ := h.Entry(0); e.Line != "5" {
		t.Errorf("oldest entry = %q, want %q", e.Line, "5")
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != maxHistory {
		t.Errorf("reloaded Len() = %d, want %d", reloaded.Len(), maxHistory)
	}
}

func TestHistory_MemoryOnly(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{"{a}", "{b}", "{a}"} {
		if err := h.Add(line, modeTmpl); err != nil {
			t.Fatal(err)
		}
	}

	if e, _ := h.Entry(1); h.Len() != 2 || e.Line != "{a}" {
		t.Errorf("entries = %v", h.Entries())
	}
}
