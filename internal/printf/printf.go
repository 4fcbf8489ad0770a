// Package printf implements the printf dialect used by the command service's display
// formats and prompt descriptions.
package printf

import (
	"fmt"
	"strconv"
	"strings"

	"bofhshell/pkg/bofhtypes"
)

// Sprintf substitutes values into a printf-style template as written by the command
// service. Besides the Go verbs it accepts %i and %u as aliases of %d. Numeric verbs
// parse their value, so a non-numeric value for %d is a type mismatch.
func Sprintf(template string, values []string) (string, error) {
	var out strings.Builder
	next := 0

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		if i+1 < len(template) && template[i+1] == '%' {
			out.WriteByte('%')
			i++
			continue
		}

		// Directive: flags, width, precision, verb.
		j := i + 1
		for j < len(template) && strings.IndexByte("-+# 0", template[j]) >= 0 {
			j++
		}
		for j < len(template) && isDigit(template[j]) {
			j++
		}
		if j < len(template) && template[j] == '.' {
			j++
			for j < len(template) && isDigit(template[j]) {
				j++
			}
		}
		if j >= len(template) {
			return "", formattingError(template, "incomplete format directive")
		}
		spec, verb := template[i+1:j], template[j]

		if next >= len(values) {
			return "", formattingError(template, "not enough arguments for format string")
		}
		arg, goVerb, err := convert(verb, values[next])
		if err != nil {
			return "", formattingError(template, err.Error())
		}
		next++
		out.WriteString(fmt.Sprintf("%"+spec+string(goVerb), arg))
		i = j
	}

	if next < len(values) {
		return "", formattingError(template, "not all arguments converted during string formatting")
	}
	return out.String(), nil
}

// convert returns the typed argument and Go verb for one directive.
func convert(verb byte, value string) (interface{}, byte, error) {
	switch verb {
	case 's', 'r':
		return value, 's', nil
	case 'd', 'i', 'u':
		n, err := parseInt(value)
		if err != nil {
			return nil, 0, fmt.Errorf("%%%c format: a number is required, not %q", verb, value)
		}
		return n, 'd', nil
	case 'x', 'X', 'o':
		n, err := parseInt(value)
		if err != nil {
			return nil, 0, fmt.Errorf("%%%c format: an integer is required, not %q", verb, value)
		}
		return n, verb, nil
	case 'f', 'F', 'e', 'E', 'g', 'G':
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%%%c format: a float is required, not %q", verb, value)
		}
		if verb == 'F' {
			verb = 'f'
		}
		return f, verb, nil
	default:
		return nil, 0, fmt.Errorf("unsupported format character %q", verb)
	}
}

// parseInt accepts integers and integral floats, as servers send both for counters.
func parseInt(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func formattingError(template, reason string) error {
	return &bofhtypes.FormattingError{Template: template, Reason: reason}
}
