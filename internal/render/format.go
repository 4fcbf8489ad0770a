package render

import (
	"fmt"
	"strings"
	"time"
)

// fieldRef is one field reference of a format line, split into the record key and an
// optional display type.
type fieldRef struct {
	name    string
	dateFmt string
	isDate  bool
}

func parseFieldRef(field string) fieldRef {
	name, typ, found := strings.Cut(field, ":")
	if !found {
		return fieldRef{name: field}
	}
	if layout, ok := strings.CutPrefix(typ, "date:"); ok {
		return fieldRef{name: name, dateFmt: layout, isDate: true}
	}
	return fieldRef{name: name}
}

// dateLayouts are the timestamp forms the service boundary produces.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"20060102T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// value returns the display form of the field in record.
func (f fieldRef) value(record map[string]string) (string, error) {
	raw := record[f.name]
	if !f.isDate || raw == notSet {
		return raw, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return formatJavaDate(t, f.dateFmt)
		}
	}
	return "", fmt.Errorf("field %s: cannot parse %q as a date", f.name, raw)
}

// notSet is how the service boundary shows an unset value.
const notSet = "<not set>"

// formatJavaDate renders t with a SimpleDateFormat style pattern. Runs of a pattern
// letter are date fields, text inside single quotes is literal ('' is a quote) and any
// other character is copied as is. Letters without a field meaning are rejected.
func formatJavaDate(t time.Time, pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			end, err := quotedLiteral(&b, pattern, i+1)
			if err != nil {
				return "", err
			}
			i = end
		case isPatternLetter(c):
			n := 1
			for i+n < len(pattern) && pattern[i+n] == c {
				n++
			}
			field, err := javaDateField(t, c, n)
			if err != nil {
				return "", fmt.Errorf("date pattern %q: %w", pattern, err)
			}
			b.WriteString(field)
			i += n
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// quotedLiteral copies the quoted text starting at i and returns the offset after the
// closing quote.
func quotedLiteral(b *strings.Builder, pattern string, i int) (int, error) {
	for i < len(pattern) {
		if pattern[i] != '\'' {
			b.WriteByte(pattern[i])
			i++
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		return i + 1, nil
	}
	return 0, fmt.Errorf("date pattern %q: unterminated quote", pattern)
}

func isPatternLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// javaDateField renders one run of n pattern letters.
func javaDateField(t time.Time, letter byte, n int) (string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return pad(t.Year()%100, 2), nil
		}
		return pad(t.Year(), n), nil
	case 'M':
		switch {
		case n >= 4:
			return t.Month().String(), nil
		case n == 3:
			return t.Month().String()[:3], nil
		}
		return pad(int(t.Month()), n), nil
	case 'd':
		return pad(t.Day(), n), nil
	case 'H':
		return pad(t.Hour(), n), nil
	case 'h':
		hour := t.Hour() % 12
		if hour == 0 {
			hour = 12
		}
		return pad(hour, n), nil
	case 'm':
		return pad(t.Minute(), n), nil
	case 's':
		return pad(t.Second(), n), nil
	case 'S':
		return pad(t.Nanosecond()/int(time.Millisecond), n), nil
	case 'E':
		if n >= 4 {
			return t.Weekday().String(), nil
		}
		return t.Weekday().String()[:3], nil
	case 'a':
		if t.Hour() < 12 {
			return "AM", nil
		}
		return "PM", nil
	}
	return "", fmt.Errorf("unsupported pattern letter %q", letter)
}

func pad(value, width int) string {
	return fmt.Sprintf("%0*d", width, value)
}
