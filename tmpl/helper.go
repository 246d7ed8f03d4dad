package tmpl

import (
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"
)

// Helper is a function callable from a template as {name arg1 arg2} or as
// a block {#name args}...{/name}. Arguments arrive already evaluated, left
// to right.
//
// Inline, the result is formatted like any other value. As a block, a bool
// result selects the body (true) or the else branch (false), a string is
// emitted verbatim, and any other value is formatted.
type Helper func(args []any, opts *HelperOptions) (any, error)

// HelperOptions gives a helper access to the render in progress.
type HelperOptions struct {
	// Name is the name the helper was invoked by.
	Name string

	r     *renderer
	scope *Scope
	block *BlockNode
}

// IsBlock reports whether the helper was invoked as a block.
func (o *HelperOptions) IsBlock() bool { return o.block != nil }

// Fn renders the block body. A non-nil frame is pushed as a new scope layer
// for the duration of the pass. Fn returns "" for inline invocations.
func (o *HelperOptions) Fn(frame *Frame) (string, error) {
	if o.block == nil {
		return "", nil
	}

	scope := o.scope
	if frame != nil {
		scope = scope.Push(*frame)
	}

	return o.r.capture(o.block.Then, scope)
}

// Inverse renders the else branch, or returns "" when there is none.
func (o *HelperOptions) Inverse() (string, error) {
	if o.block == nil || !o.block.HasElse {
		return "", nil
	}

	return o.r.capture(o.block.Else, o.scope)
}

// Lookup resolves a path in the caller's scope.
func (o *HelperOptions) Lookup(path string) (any, error) {
	return o.scope.Resolve(path)
}

// Locale returns the locale of the render in progress.
func (o *HelperOptions) Locale() Locale { return o.r.locale }

// TrailingPass reports whether [WithTrailingPass] is enabled.
func (o *HelperOptions) TrailingPass() bool { return o.r.opts.trailingPass }

// Registry maps helper names to helpers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]Helper
}

// NewRegistry returns a Registry holding the built-in helpers.
func NewRegistry() *Registry {
	return &Registry{helpers: builtins()}
}

// Register adds or replaces a helper. A nil fn removes the name.
func (r *Registry) Register(name string, fn Helper) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fn == nil {
		delete(r.helpers, name)

		return
	}

	r.helpers[name] = fn
}

// Unregister removes a helper. Removing an absent name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.helpers, name)
}

// Lookup returns the helper registered under name.
func (r *Registry) Lookup(name string) (Helper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.helpers[name]

	return fn, ok
}

// Names returns the registered helper names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.helpers))
}

// Reset restores the built-in helpers, dropping all others.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.helpers = builtins()
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by renders that do
// not set [WithRegistry].
func DefaultRegistry() *Registry { return defaultRegistry }

// RegisterHelper adds or replaces a helper in the default registry.
func RegisterHelper(name string, fn Helper) { defaultRegistry.Register(name, fn) }

// UnregisterHelper removes a helper from the default registry.
func UnregisterHelper(name string) { defaultRegistry.Unregister(name) }

// NumericHelper adapts a binary numeric function to a [Helper]. The helper
// requires exactly two numeric arguments.
func NumericHelper(fn func(a, b float64) (float64, error)) Helper {
	return func(args []any, opts *HelperOptions) (any, error) {
		a, b, err := numericPair(args, opts.Name)
		if err != nil {
			return nil, err
		}

		return fn(a, b)
	}
}

// IsBuiltin reports whether name is one of the helpers every new
// [Registry] starts with.
func IsBuiltin(name string) bool {
	_, ok := builtins()[name]

	return ok
}

func builtins() map[string]Helper {
	return map[string]Helper{
		"add": helperAdd,
		"subtract": NumericHelper(func(a, b float64) (float64, error) {
			return a - b, nil
		}),
		"multiply": NumericHelper(func(a, b float64) (float64, error) {
			return a * b, nil
		}),
		"divide": NumericHelper(func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}

			return a / b, nil
		}),
		"eq":      compareHelper(func(c int) bool { return c == 0 }, true),
		"ne":      compareHelper(func(c int) bool { return c != 0 }, true),
		"gt":      compareHelper(func(c int) bool { return c > 0 }, false),
		"ge":      compareHelper(func(c int) bool { return c >= 0 }, false),
		"lt":      compareHelper(func(c int) bool { return c < 0 }, false),
		"le":      compareHelper(func(c int) bool { return c <= 0 }, false),
		"if":      helperIf,
		"unless":  helperUnless,
		"foreach": helperForeach,
		"each":    helperForeach,
	}
}

func arity(args []any, want int, name string) error {
	if len(args) != want {
		return ErrArity.With(
			slog.String("helper", name),
			slog.Int("want", want),
			slog.Int("got", len(args)),
		)
	}

	return nil
}

func numericPair(args []any, name string) (float64, float64, error) {
	if err := arity(args, 2, name); err != nil {
		return 0, 0, err
	}

	a, okA := ToNumber(args[0])
	b, okB := ToNumber(args[1])

	if !okA || !okB {
		return 0, 0, ErrNotNumeric.With(slog.String("helper", name))
	}

	return a, b, nil
}

// helperAdd sums two numbers. When either operand is a string the operands
// are concatenated instead.
func helperAdd(args []any, opts *HelperOptions) (any, error) {
	if err := arity(args, 2, opts.Name); err != nil {
		return nil, err
	}

	ka, kb := KindOf(args[0]), KindOf(args[1])

	if ka == KindString || kb == KindString {
		if !scalar(ka) || !scalar(kb) {
			return nil, ErrNotNumeric.With(slog.String("helper", opts.Name))
		}

		return valueString(args[0]) + valueString(args[1]), nil
	}

	a, b, err := numericPair(args, opts.Name)
	if err != nil {
		return nil, err
	}

	return a + b, nil
}

func scalar(k Kind) bool {
	return k == KindString || k == KindNumber || k == KindBool
}

// compareHelper builds a comparison helper. Numbers compare numerically,
// also against numeric strings; strings compare lexically. When loose is
// set, operands of different kinds compare unequal instead of failing.
func compareHelper(test func(int) bool, loose bool) Helper {
	return func(args []any, opts *HelperOptions) (any, error) {
		if err := arity(args, 2, opts.Name); err != nil {
			return nil, err
		}

		c, ok := compare(args[0], args[1])
		if !ok {
			if loose {
				return test(boolCompare(reflect.DeepEqual(args[0], args[1]))), nil
			}

			return nil, ErrNotNumeric.With(slog.String("helper", opts.Name))
		}

		return test(c), nil
	}
}

func boolCompare(equal bool) int {
	if equal {
		return 0
	}

	return 1
}

func compare(a, b any) (int, bool) {
	ka, kb := KindOf(a), KindOf(b)

	if ka == KindString && kb == KindString {
		sa, sb := valueString(a), valueString(b)

		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		default:
			return 0, true
		}
	}

	fa, okA := looseNumber(a, ka)
	fb, okB := looseNumber(b, kb)

	if !okA || !okB || (ka != KindNumber && kb != KindNumber) {
		return 0, false
	}

	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	case fa == fb:
		return 0, true
	default:
		return 0, false
	}
}

func looseNumber(v any, k Kind) (float64, bool) {
	switch k {
	case KindNumber:
		return ToNumber(v)
	case KindString:
		f, err := strconv.ParseFloat(valueString(v), 64)

		return f, err == nil && !math.IsNaN(f)
	}

	return 0, false
}

func helperIf(args []any, opts *HelperOptions) (any, error) {
	if len(args) == 0 {
		return false, nil
	}

	return Truthy(args[0]), nil
}

func helperUnless(args []any, opts *HelperOptions) (any, error) {
	if len(args) == 0 {
		return true, nil
	}

	return !Truthy(args[0]), nil
}

// helperForeach renders the body once per element of a non-empty sequence
// and selects the else branch otherwise. With [WithTrailingPass] and a
// truthy second argument, the last element is rendered one extra time.
func helperForeach(args []any, opts *HelperOptions) (any, error) {
	if !opts.IsBlock() {
		return nil, ErrArity.With(
			slog.String("helper", opts.Name),
			slog.String("reason", "block helper called inline"),
		)
	}

	if len(args) == 0 || KindOf(args[0]) != KindSequence {
		return false, nil
	}

	seq := args[0]

	n := sequenceLen(seq)
	if n == 0 {
		return false, nil
	}

	frame := func(i int) *Frame {
		return &Frame{
			This:  sequenceAt(seq, i),
			Index: i,
			First: i == 0,
			Last:  i == n-1,
		}
	}

	var out []byte

	for i := range n {
		s, err := opts.Fn(frame(i))
		if err != nil {
			return nil, err
		}

		out = append(out, s...)
	}

	if len(args) > 1 && Truthy(args[1]) && opts.TrailingPass() {
		s, err := opts.Fn(frame(n - 1))
		if err != nil {
			return nil, err
		}

		out = append(out, s...)
	}

	return string(out), nil
}
