// Package parser splits operator command lines into tokens.
//
// Whitespace delimits tokens unless it appears inside a run opened by ' or " and closed
// by the same quote character. Quoted runs join adjacent unquoted text into one token,
// and empty tokens are dropped.
package parser

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned when a quoted run is not closed.
var ErrUnterminatedQuote = errors.New("missing end-quote")

// Split tokenizes a command line.
func Split(line string) ([]string, error) {
	tokens, _, err := scan(line)
	return tokens, err
}

// EndsInSeparator reports whether the line ends in unquoted whitespace, i.e. the operator
// has finished the last word.
func EndsInSeparator(line string) bool {
	_, trailing, err := scan(line)
	return err == nil && trailing
}

func scan(line string) ([]string, bool, error) {
	var (
		tokens   []string
		current  strings.Builder
		quote    rune
		trailing bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		trailing = false
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case unicode.IsSpace(r):
			flush()
			trailing = true
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, false, ErrUnterminatedQuote
	}
	flush()
	return tokens, trailing, nil
}
