// Package output provides the operator-facing console output of the bofh shell.
// Styling is injected through a StyleProvider so the same printer serves terminals,
// pipes and tests.
package output

// StyleProvider renders text for a semantic type.
// The output package depends only on this interface, not on a concrete styling library.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the style provider is ready to provide styles.
	// This allows the output system to gracefully fall back to plain text.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
type TextStyle interface {
	// Render applies styling to the given text and returns the styled result.
	Render(text string) string
}

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain is response data and anything else printed verbatim.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"

	// SemanticHeader is the header line of a formatted response.
	SemanticHeader SemanticType = "header"
	// SemanticCommand is an echoed command line.
	SemanticCommand SemanticType = "command"
	// SemanticHighlight represents highlighted text such as the message of the day.
	SemanticHighlight SemanticType = "highlight"
)
