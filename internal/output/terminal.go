package output

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ForFile returns the printer options suited to f: lipgloss styles on a terminal,
// plain text otherwise.
func ForFile(f *os.File) []Option {
	if !IsTerminal(f) {
		return []Option{WithWriter(f), PlainText()}
	}
	return []Option{WithWriter(f), WithStyles(NewLipglossStyleProvider(f))}
}
