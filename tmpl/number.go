package tmpl

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	// defaultDecimals caps the fraction digits kept by a numeric spec without
	// an explicit precision.
	defaultDecimals = 6
	// maxDecimals caps an explicit precision, as Number.prototype.toFixed does.
	maxDecimals = 100
)

// numberString renders a number the way JavaScript's Number.prototype.toString
// does: the shortest representation that round-trips, switching to
// exponent notation outside [1e-6, 1e21). NaN and infinities render empty.
func numberString(v any) string {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}

	f, ok := ToNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}

	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return jsExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// jsExponent rewrites Go's exponent form ("1.5e-07") to JavaScript's
// ("1.5e-7").
func jsExponent(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}

	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")

	if digits == "" {
		digits = "0"
	}

	return mant + "e" + sign + digits
}

// numberSpec is a parsed numeric format spec of the form [,][.N]f.
type numberSpec struct {
	decimals int // -1 keeps the present fraction digits, capped
	group    bool
}

// parseNumberSpec reports whether spec is numeric, i.e. ends in 'f'.
func parseNumberSpec(spec string) (numberSpec, bool) {
	body, ok := strings.CutSuffix(spec, "f")
	if !ok {
		return numberSpec{}, false
	}

	ns := numberSpec{decimals: -1, group: strings.Contains(body, ",")}

	if _, prec, found := strings.Cut(body, "."); found {
		end := 0
		for end < len(prec) && prec[end] >= '0' && prec[end] <= '9' {
			end++
		}

		if end > 0 {
			n, err := strconv.Atoi(prec[:end])
			if err != nil || n > maxDecimals {
				n = maxDecimals
			}

			ns.decimals = n
		}
	}

	return ns, true
}

// decimalDigits returns the exact shortest decimal expansion of |v| split
// at the decimal point, and whether v is negative.
func decimalDigits(v any) (intPart, frac string, neg, ok bool) {
	var s string

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s = strconv.FormatUint(rv.Uint(), 10)
	default:
		f, isNum := ToNumber(v)
		if !isNum || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", "", false, false
		}

		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	s, neg = strings.CutPrefix(s, "-")
	intPart, frac, _ = strings.Cut(s, ".")

	return intPart, frac, neg, true
}

// formatNumber applies a numeric spec. Rounding is half away from zero on
// the decimal expansion, so 1.005 rounds to 1.01 at two places.
func formatNumber(v any, ns numberSpec, loc Locale) string {
	intPart, frac, neg, ok := decimalDigits(v)
	if !ok {
		return ""
	}

	decimals := ns.decimals
	if decimals < 0 {
		decimals = min(len(frac), defaultDecimals)
	}

	if len(frac) > decimals {
		up := frac[decimals] >= '5'
		frac = frac[:decimals]

		if up {
			digits := increment(intPart + frac)
			intPart, frac = digits[:len(digits)-decimals], digits[len(digits)-decimals:]
		}
	} else {
		frac += strings.Repeat("0", decimals-len(frac))
	}

	var b strings.Builder

	if neg && strings.Trim(intPart+frac, "0") != "" {
		b.WriteByte('-')
	}

	if ns.group {
		intPart = groupThousands(intPart, loc.ThousandsSep)
	}

	b.WriteString(intPart)

	if decimals > 0 {
		b.WriteString(loc.DecimalPoint)
		b.WriteString(frac)
	}

	return b.String()
}

// increment adds one to a string of decimal digits.
func increment(digits string) string {
	b := []byte(digits)

	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++

			return string(b)
		}

		b[i] = '0'
	}

	return "1" + string(b)
}

// groupThousands inserts sep between each group of three digits counted
// from the right.
func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	b.WriteString(digits[:lead])

	for i := lead; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
