package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// notSet is what the service's None looks like after washing.
const notSet = "<not set>"

// timeLayout is how timestamps from the service are shown as strings.
const timeLayout = "2006-01-02T15:04:05"

// washArgs escapes outgoing arguments for the service's XML-RPC extensions: a leading
// colon is doubled, and control characters other than TAB, LF and CR are refused.
func washArgs(args []string) ([]interface{}, error) {
	washed := make([]interface{}, len(args))
	for i, arg := range args {
		for _, r := range arg {
			if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
				return nil, &illegalCharacterError{char: r}
			}
		}
		if strings.HasPrefix(arg, ":") {
			arg = ":" + arg
		}
		washed[i] = arg
	}
	return washed, nil
}

// illegalCharacterError rejects an argument the service cannot receive.
type illegalCharacterError struct {
	char rune
}

func (e *illegalCharacterError) Error() string {
	return fmt.Sprintf("illegal character: %d", e.char)
}

// washResponse undoes the service's string escaping throughout a decoded reply.
func washResponse(v interface{}) interface{} {
	switch value := v.(type) {
	case string:
		return washString(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = washResponse(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = washResponse(item)
		}
		return out
	default:
		return v
	}
}

func washString(s string) string {
	if !strings.HasPrefix(s, ":") {
		return s
	}
	s = s[1:]
	if s == "None" {
		return notSet
	}
	return s
}

// stringify renders a washed scalar for display.
func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return notSet
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case bool:
		if value {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case time.Time:
		return value.Format(timeLayout)
	case []byte:
		return string(value)
	default:
		return fmt.Sprint(value)
	}
}
