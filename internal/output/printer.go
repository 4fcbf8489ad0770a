package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer is the main output handler that supports both plain and styled output.
// Response data always goes through the plain semantic so it reaches the operator
// exactly as rendered.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	forcePlain    bool

	// Thread safety for concurrent output
	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes unstyled text to os.Stdout.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
	}

	// Apply options
	for _, opt := range options {
		opt(p)
	}

	return p
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text with info styling.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Warning outputs warning text with warning styling (typically yellow).
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text with error styling (typically red).
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Header outputs the header line of a formatted response.
func (p *Printer) Header(text string) {
	p.output(SemanticHeader, text, true)
}

// Command outputs an echoed command line.
func (p *Printer) Command(text string) {
	p.output(SemanticCommand, text, true)
}

// Highlight outputs text with highlight styling.
func (p *Printer) Highlight(text string) {
	p.output(SemanticHighlight, text, true)
}

// output is the core output method that handles all rendering logic.
func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var style TextStyle
	if p.IsStylable() {
		style = p.styleProvider.GetStyle(string(semantic))
	} else {
		style = plainStyles.GetStyle(string(semantic))
	}

	result := style.Render(text)
	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	_, _ = fmt.Fprint(p.writer, result) // Ignore write errors for output operations
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}
