package tmpl

//go:generate go tool stringer --linecomment --type Kind,BlockKind --output kind_string.go

import (
	"math"
	"reflect"
	"strconv"
	"time"
)

// Context is the data a template renders against. Any map with string keys
// is accepted where a Context is expected.
type Context = map[string]any

// Host marks values that belong to the embedding application (handles,
// windows, documents, services) and must never be read by a template, even
// when their underlying type is otherwise allowed.
type Host interface {
	HostObject()
}

// Kind classifies a value by what a template may do with it.
type Kind int

const (
	KindNil      Kind = iota // nil
	KindBool                 // bool
	KindNumber               // number
	KindString               // string
	KindDate                 // date
	KindContext              // context
	KindSequence             // sequence
	KindUnsafe               // unsafe
)

// KindOf classifies v. Only the kinds listed by [Kind] are readable;
// functions, channels, pointers, structs other than [time.Time], and [Host]
// values are [KindUnsafe].
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case Host:
		return KindUnsafe
	case bool:
		return KindBool
	case string:
		return KindString
	case time.Time:
		return KindDate
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindNumber
	case map[string]any:
		return KindContext
	case []any:
		return KindSequence
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindContext
		}
	case reflect.Slice, reflect.Array:
		return KindSequence
	}

	return KindUnsafe
}

// ToNumber converts a value of [KindNumber] to float64.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case Host:
		return 0, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}

	return 0, false
}

// Truthy reports whether v selects the Then branch of an if block. Nil,
// false, zero, NaN, the empty string and unsafe values are falsy. Contexts
// and sequences are truthy even when empty.
func Truthy(v any) bool {
	switch KindOf(v) {
	case KindBool:
		return reflect.ValueOf(v).Bool()
	case KindNumber:
		f, _ := ToNumber(v)

		return f != 0 && !math.IsNaN(f)
	case KindString:
		return reflect.ValueOf(v).Len() > 0
	case KindDate, KindContext, KindSequence:
		return true
	default:
		return false
	}
}

// lookupKey returns the value stored under key in a value of
// [KindContext].
func lookupKey(ctx any, key string) (any, bool) {
	if m, ok := ctx.(map[string]any); ok {
		v, found := m[key]

		return v, found
	}

	rv := reflect.ValueOf(ctx)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}

	return mv.Interface(), true
}

// sequenceLen returns the length of a value of [KindSequence].
func sequenceLen(seq any) int {
	if s, ok := seq.([]any); ok {
		return len(s)
	}

	return reflect.ValueOf(seq).Len()
}

// sequenceAt returns element i of a value of [KindSequence].
func sequenceAt(seq any, i int) any {
	if s, ok := seq.([]any); ok {
		return s[i]
	}

	return reflect.ValueOf(seq).Index(i).Interface()
}

// parseIndex parses a path segment as a non-negative decimal index.
func parseIndex(seg string) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}

	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(seg)

	return n, err == nil
}
