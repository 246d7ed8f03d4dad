package tmpl

import (
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// strftimeTokens are the conversions passed through to strftime unchanged.
const strftimeTokens = "aAbBdHIjmMSyY"

// formatDate renders t in UTC according to a %-token spec.
//
// Besides the C conversions in strftimeTokens it understands:
//
//	%e  day of month, space padded
//	%w  day of week, 0 is Sunday
//	%o  month, not padded
//	%k  hour (24h), not padded
//	%l  hour (12h), not padded
//	%L  milliseconds, zero padded to 3
//	%p  AM or PM
//	%P  am or pm
//	%%  a literal percent sign
//
// Any other token is copied to the output as written.
func formatDate(t time.Time, spec string) string {
	t = t.UTC()

	var b strings.Builder

	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if c != '%' {
			b.WriteByte(c)

			continue
		}

		if i+1 >= len(spec) {
			b.WriteString("%%")

			continue
		}

		i++
		tok := spec[i]

		if strings.IndexByte(strftimeTokens, tok) >= 0 {
			b.WriteByte('%')
			b.WriteByte(tok)

			continue
		}

		b.WriteString(escapePercent(dateToken(t, tok)))
	}

	return strftime.Format(b.String(), t)
}

func dateToken(t time.Time, tok byte) string {
	switch tok {
	case 'e':
		return pad(t.Day(), 2, ' ')
	case 'w':
		return strconv.Itoa(int(t.Weekday()))
	case 'o':
		return strconv.Itoa(int(t.Month()))
	case 'k':
		return strconv.Itoa(t.Hour())
	case 'l':
		return strconv.Itoa(hour12(t))
	case 'L':
		return pad(t.Nanosecond()/int(time.Millisecond), 3, '0')
	case 'p':
		if t.Hour() < 12 {
			return "AM"
		}

		return "PM"
	case 'P':
		if t.Hour() < 12 {
			return "am"
		}

		return "pm"
	case '%':
		return "%"
	default:
		return "%" + string(tok)
	}
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}

	return h
}

func pad(n, width int, fill byte) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}

	return strings.Repeat(string(fill), width-len(s)) + s
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// dateFromMillis interprets a number as milliseconds since the Unix epoch.
func dateFromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
