package tmpl

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestCompile_Cached(t *testing.T) {
	ClearCache()

	ctx := context.Background()

	first, err := Compile(ctx, "{a} and {b}")
	if err != nil {
		t.Fatal(err)
	}

	second, err := Compile(ctx, "{a} and {b}")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the cached template to be reused")
	}

	deeper, err := Compile(ctx, "{a} and {b}", WithMaxDepth(8))
	if err != nil {
		t.Fatal(err)
	}

	if deeper == first {
		t.Error("templates parsed with different limits share a cache entry")
	}

	// Render-only options do not split the cache.
	strict, _ := Compile(ctx, "{a} and {b}", WithStrict(true), WithMaxOutput(10))
	if strict != first {
		t.Error("render options split the cache")
	}

	ClearCache()

	third, err := Compile(ctx, "{a} and {b}")
	if err != nil {
		t.Fatal(err)
	}

	if third == first {
		t.Error("ClearCache kept the template")
	}
}

func TestCompile_CachesErrors(t *testing.T) {
	ClearCache()

	_, err1 := Compile(context.Background(), "{#if x}")
	_, err2 := Compile(context.Background(), "{#if x}")

	if err1 == nil || err1 != err2 {
		t.Errorf("errors = %v, %v; want the same cached error", err1, err2)
	}
}

func TestCompile_Concurrent(t *testing.T) {
	ClearCache()

	const n = 16

	var wg sync.WaitGroup

	results := make([]*Template, n)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			tmpl, err := Compile(context.Background(), "{#foreach xs}{this}{/foreach}")
			if err != nil {
				t.Errorf("compile %d: %v", i, err)
			}

			results[i] = tmpl
		}()
	}

	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("result %d is a different template", i)
		}
	}
}

func TestCompileReader(t *testing.T) {
	ClearCache()

	src := strings.Repeat("x", 1<<16) + "{v}"

	tmpl, err := CompileReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Execute(context.Background(), Context{"v": 1})
	if err != nil {
		t.Fatal(err)
	}

	if got != strings.Repeat("x", 1<<16)+"1" {
		t.Errorf("unexpected output of %d bytes", len(got))
	}

	again, _ := Compile(context.Background(), src)
	if again != tmpl {
		t.Error("CompileReader did not populate the cache")
	}
}

func TestCompile_CollidingEntry(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()

	// Occupy the key of "{a}" with a failed parse of another source.
	stale := &entry{source: "{#if x}", err: ErrUnbalanced}
	stale.once.Do(func() {})
	globalCache.Store(cacheKey("{a}", makeOptions()), stale)

	got, err := Compile(ctx, "{a}")
	if err != nil {
		t.Fatalf("colliding error entry returned: %v", err)
	}

	if got.Source != "{a}" {
		t.Errorf("Source = %q, want %q", got.Source, "{a}")
	}

	other, err := Parse(ctx, "{b}")
	if err != nil {
		t.Fatal(err)
	}

	wrong := &entry{source: "{b}", tmpl: other}
	wrong.once.Do(func() {})
	globalCache.Store(cacheKey("{c}", makeOptions()), wrong)

	if got, err := Compile(ctx, "{c}"); err != nil || got.Source != "{c}" {
		t.Errorf("colliding template entry: %v, %v", got, err)
	}
}
