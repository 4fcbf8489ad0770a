package testutils

import (
	"bytes"
	"strings"

	"bofhshell/internal/output"
)

// OutputBuffer collects what a printer writes.
type OutputBuffer struct {
	bytes.Buffer
}

// Lines returns the collected output split into lines, without the final newline.
func (b *OutputBuffer) Lines() []string {
	content := b.String()
	if content == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// Contains reports whether the collected output contains text.
func (b *OutputBuffer) Contains(text string) bool {
	return strings.Contains(b.String(), text)
}

// NewTestPrinter returns a plain text printer and the buffer it writes to.
func NewTestPrinter() (*output.Printer, *OutputBuffer) {
	buffer := &OutputBuffer{}
	return output.NewPrinter(output.WithWriter(buffer), output.PlainText()), buffer
}
