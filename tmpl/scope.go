package tmpl

import (
	"log/slog"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Frame is the set of bindings a block helper pushes for one pass over its
// body. This is bound to "this"; when it is a context its keys are also
// visible unqualified.
type Frame struct {
	This  any
	Index int
	First bool
	Last  bool
}

// Scope is a stack of lookup layers over a root [Context]. A Scope is never
// modified after creation; [Scope.Push] returns a new Scope sharing the
// outer layers.
type Scope struct {
	parent *Scope
	root   any
	frame  *Frame
}

// NewScope returns a Scope whose only layer is root. The root must be nil
// or of [KindContext].
func NewScope(root any) *Scope {
	return &Scope{root: root}
}

// Push returns a Scope with f as its innermost layer.
func (s *Scope) Push(f Frame) *Scope {
	return &Scope{parent: s, root: s.root, frame: &f}
}

// This returns the innermost bound item, or the root context when no block
// layer is active.
func (s *Scope) This() any {
	for l := s; l != nil; l = l.parent {
		if l.frame != nil {
			return l.frame.This
		}
	}

	return s.root
}

// binding resolves the first segment of a path, walking the layers
// innermost first and then the root context.
func (s *Scope) binding(name string) (any, bool) {
	for l := s; l != nil; l = l.parent {
		f := l.frame
		if f == nil {
			continue
		}

		switch name {
		case "@index":
			return f.Index, true
		case "@first":
			return f.First, true
		case "@last":
			return f.Last, true
		}

		if KindOf(f.This) == KindContext {
			if v, ok := lookupKey(f.This, name); ok {
				return v, true
			}
		}
	}

	if s.root == nil {
		return nil, false
	}

	return lookupKey(s.root, name)
}

// Resolve looks up a dotted path. The first segment is found in the nearest
// layer that binds it; each further segment descends only through contexts
// (by key), sequences (by decimal index or "length") and strings
// ("length"). Reaching a value of [KindUnsafe], or stepping past any other
// leaf, returns [ErrUnsafeAccess]. A missing key resolves to nil.
func (s *Scope) Resolve(path string) (any, error) {
	segs := strings.Split(path, ".")

	var v any

	switch head := segs[0]; head {
	case "":
		return nil, ErrInvalidExpression.With(slog.String("path", path))
	case "this":
		v = s.This()
	default:
		v, _ = s.binding(head)
	}

	if KindOf(v) == KindUnsafe {
		return nil, ErrUnsafeAccess.With(
			slog.String("path", path),
			slog.String("segment", segs[0]),
		)
	}

	for _, seg := range segs[1:] {
		next, err := step(v, seg)
		if err != nil {
			return nil, err.With(slog.String("path", path))
		}

		v = next
	}

	return v, nil
}

// step descends one segment from v.
func step(v any, seg string) (any, *Error) {
	if seg == "" {
		return nil, ErrInvalidExpression.With(slog.String("segment", seg))
	}

	var next any

	switch kind := KindOf(v); kind {
	case KindNil:
		return nil, nil

	case KindContext:
		next, _ = lookupKey(v, seg)

	case KindSequence:
		n := sequenceLen(v)

		if seg == "length" {
			return n, nil
		}

		i, ok := parseIndex(seg)
		if !ok || i >= n {
			return nil, nil
		}

		next = sequenceAt(v, i)

	case KindString:
		if seg != "length" {
			return nil, ErrUnsafeAccess.With(
				slog.String("segment", seg),
				slog.String("kind", kind.String()),
			)
		}

		return utf8.RuneCountInString(reflect.ValueOf(v).String()), nil

	default:
		return nil, ErrUnsafeAccess.With(
			slog.String("segment", seg),
			slog.String("kind", kind.String()),
		)
	}

	if KindOf(next) == KindUnsafe {
		return nil, ErrUnsafeAccess.With(slog.String("segment", seg))
	}

	return next, nil
}
