package tmpl

import (
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale holds the separators used by numeric format specs.
type Locale struct {
	DecimalPoint string `yaml:"decimal-point" json:"decimalPoint"`
	ThousandsSep string `yaml:"thousands-sep" json:"thousandsSep"`
}

// DefaultLocale is the locale in effect until [SetLocale] is called and
// after [ResetLocale].
var DefaultLocale = Locale{DecimalPoint: ".", ThousandsSep: ","}

var locale = struct {
	sync.RWMutex
	current Locale
}{current: DefaultLocale}

// SetLocale replaces the process-wide locale. Renders started afterwards use
// it unless overridden with [WithLocale].
func SetLocale(l Locale) {
	locale.Lock()
	defer locale.Unlock()

	locale.current = l
}

// CurrentLocale returns the process-wide locale.
func CurrentLocale() Locale {
	locale.RLock()
	defer locale.RUnlock()

	return locale.current
}

// ResetLocale restores [DefaultLocale].
func ResetLocale() { SetLocale(DefaultLocale) }

// localeProbe is formatted by the locale's printer to discover its
// separators. The digits are distinct so the separators can be located
// unambiguously.
const localeProbe = 1234567.5

// LocaleFor derives separators from the number formatting conventions of a
// BCP 47 language tag. Tags whose conventions cannot be determined yield
// [DefaultLocale].
func LocaleFor(tag language.Tag) Locale {
	p := message.NewPrinter(tag)
	s := []rune(p.Sprint(number.Decimal(localeProbe, number.MinFractionDigits(1))))

	var (
		digits []int // rune offsets of the digits 1..7 and 5
		seps   []string
		run    []rune
	)

	for i, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, i)
			seps = append(seps, string(run))
			run = run[:0]

			continue
		}

		run = append(run, r)
	}

	// seps[k] is the text preceding digit k: seps[1] sits between 1 and 2,
	// seps[7] between 7 and 5.
	if len(digits) != 8 || seps[4] != seps[1] || seps[7] == "" {
		return DefaultLocale
	}

	return Locale{DecimalPoint: seps[7], ThousandsSep: seps[1]}
}

// ParseLocale is [LocaleFor] on a tag string. It reports false when the tag
// is not well-formed.
func ParseLocale(tag string) (Locale, bool) {
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale, false
	}

	return LocaleFor(t), true
}
