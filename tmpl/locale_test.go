package tmpl

import (
	"sync"
	"testing"

	"golang.org/x/text/language"
)

func TestLocaleFor(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want Locale
	}{
		{language.English, Locale{DecimalPoint: ".", ThousandsSep: ","}},
		{language.AmericanEnglish, Locale{DecimalPoint: ".", ThousandsSep: ","}},
		{language.German, Locale{DecimalPoint: ",", ThousandsSep: "."}},
		{language.Italian, Locale{DecimalPoint: ",", ThousandsSep: "."}},
	}

	for _, tt := range tests {
		if got := LocaleFor(tt.tag); got != tt.want {
			t.Errorf("LocaleFor(%v) = %+v, want %+v", tt.tag, got, tt.want)
		}
	}
}

func TestParseLocale(t *testing.T) {
	if l, ok := ParseLocale("de"); !ok || l.DecimalPoint != "," {
		t.Errorf("ParseLocale(de) = %+v, %v", l, ok)
	}

	if l, ok := ParseLocale("not a tag!"); ok || l != DefaultLocale {
		t.Errorf("ParseLocale(invalid) = %+v, %v", l, ok)
	}
}

func TestSetLocale(t *testing.T) {
	t.Cleanup(ResetLocale)

	custom := Locale{DecimalPoint: ",", ThousandsSep: " "}

	SetLocale(custom)

	if got := CurrentLocale(); got != custom {
		t.Errorf("CurrentLocale() = %+v, want %+v", got, custom)
	}

	ResetLocale()

	if got := CurrentLocale(); got != DefaultLocale {
		t.Errorf("after reset = %+v, want %+v", got, DefaultLocale)
	}
}

func TestSetLocale_ConcurrentRenders(t *testing.T) {
	t.Cleanup(ResetLocale)

	locales := []Locale{
		{DecimalPoint: ".", ThousandsSep: ","},
		{DecimalPoint: ",", ThousandsSep: "."},
	}

	valid := map[string]bool{"1,234.50": true, "1.234,50": true}

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			SetLocale(locales[i%2])
		}()

		go func() {
			defer wg.Done()

			if got := Format("{v:,.2f}", Context{"v": 1234.5}); !valid[got] {
				t.Errorf("mixed separators: %q", got)
			}
		}()
	}

	wg.Wait()
}
