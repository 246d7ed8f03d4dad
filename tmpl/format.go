package tmpl

import (
	"log/slog"
	"math"
	"reflect"
	"strings"
	"time"
)

// FormatValue renders v for output.
//
// Without a spec, numbers use the shortest round-trip decimal form, dates
// render as RFC 3339 in UTC, booleans as true or false, and sequences as
// their elements joined by commas. Nil and contexts render empty.
//
// A spec ending in 'f' formats a number with fixed decimals; any other spec
// formats a date, or a number taken as epoch milliseconds, with %-tokens.
// Specs on other kinds are ignored.
//
// Unsafe values return [ErrUnsafeAccess].
func FormatValue(v any, spec string, loc Locale) (string, error) {
	kind := KindOf(v)

	if kind == KindUnsafe {
		return "", ErrUnsafeAccess.With(slog.String("type", reflect.TypeOf(v).String()))
	}

	if spec == "" {
		return valueString(v), nil
	}

	ns, numeric := parseNumberSpec(spec)

	switch {
	case kind == KindNumber && numeric:
		return formatNumber(v, ns, loc), nil

	case kind == KindNumber:
		f, _ := ToNumber(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", nil
		}

		return formatDate(dateFromMillis(f), spec), nil

	case kind == KindDate && !numeric:
		t, _ := v.(time.Time)

		return formatDate(t, spec), nil
	}

	return valueString(v), nil
}

// valueString is the spec-less rendering of an allowed value.
func valueString(v any) string {
	switch kind := KindOf(v); kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s
		}

		return reflect.ValueOf(v).String()

	case KindNumber:
		return numberString(v)

	case KindBool:
		if reflect.ValueOf(v).Bool() {
			return "true"
		}

		return "false"

	case KindDate:
		t, _ := v.(time.Time)

		return t.UTC().Format(time.RFC3339)

	case KindSequence:
		n := sequenceLen(v)
		parts := make([]string, n)

		for i := range n {
			parts[i] = valueString(sequenceAt(v, i))
		}

		return strings.Join(parts, ",")

	default:
		return ""
	}
}
