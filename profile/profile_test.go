package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	c := New(WithMode("cpu"), WithPath("/tmp/p"), WithQuiet(true), WithMode("heap"))

	want := Config{Mode: "heap", Path: "/tmp/p", Quiet: true}
	if c != want {
		t.Errorf("New() = %+v, want %+v", c, want)
	}
}

func TestStart_Disabled(t *testing.T) {
	for _, c := range []Config{{}, New(WithMode("no-such-mode"))} {
		ctrl := c.Start()
		if _, ok := ctrl.(ignore); !ok {
			t.Errorf("Start(%+v) = %T, want no-op", c, ctrl)
		}

		ctrl.Stop()
	}
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() = %v is not sorted", m)
	}
}
