package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ardnew/tfmt/tmpl"
)

func TestRender(t *testing.T) {
	dir := t.TempDir()

	data := writeFile(t, dir, "data.yaml", "user:\n  name: ada\n  score: 12345.678\n")
	extra := writeFile(t, dir, "extra.json", `{"user": {"name": "grace"}, "n": 2}`)
	tpl := writeFile(t, dir, "t.tmpl", "{user.name}:{n}\n")

	ctx, out := newContext(t, nil, nil)

	r := &Render{
		Input: dataFlags{
			Data: []string{data, extra},
			Set:  []string{"n=3", "tags=['a','b']"},
		},
		Templates: []string{tpl},
		Formats:   []string{"{user.score:,.1f}", "{#each tags}{this}{/each}"},
	}

	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if want := "grace:3\n12,345.7\nab\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRender_Order(t *testing.T) {
	ctx, out := newContext(t, nil, nil)

	var (
		formats []string
		want    strings.Builder
	)

	for i := range 50 {
		formats = append(formats, fmt.Sprintf("{multiply %d 2}", i))
		fmt.Fprintln(&want, i*2)
	}

	if err := (&Render{Formats: formats}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if out.String() != want.String() {
		t.Errorf("output out of order:\n%s", out.String())
	}
}

func TestRender_Errors(t *testing.T) {
	ctx, out := newContext(t, nil, nil)

	tests := []struct {
		name string
		cmd  Render
		want error
	}{
		{"no_template", Render{}, ErrNoTemplate},
		{"missing_template", Render{Templates: []string{t.TempDir() + "/none"}}, ErrReadTemplate},
		{"bad_set", Render{Formats: []string{"x"}, Input: dataFlags{Set: []string{"=1"}}}, ErrSetValue},
		{"strict", Render{Formats: []string{"ok", "{nosuch 1}"}}, tmpl.ErrUnknownHelper},
		{"parse", Render{Formats: []string{"{#if a}"}}, tmpl.ErrUnbalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()

			err := tt.cmd.Run(ctx)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}

			if out.Len() != 0 {
				t.Errorf("failed render wrote %q", out.String())
			}
		})
	}
}

func TestRender_Lenient(t *testing.T) {
	ctx, out := newContext(t, nil, nil)
	ctx = WithEngine(ctx)

	if err := (&Render{Formats: []string{"[{nosuch 1}]"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if out.String() != "[]\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRender_ParseErrorIsRender(t *testing.T) {
	ctx, _ := newContext(t, nil, nil)

	err := (&Render{Formats: []string{"{#if a}"}}).Run(ctx)

	var pe *tmpl.ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrRender) {
		t.Fatalf("error = %v", err)
	}

	if pe.Pos.Line != 1 || pe.Pos.Column != 1 {
		t.Errorf("position = %v", pe.Pos)
	}
}
