package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// lipglossTextStyle adapts a lipgloss.Style to TextStyle.
type lipglossTextStyle struct {
	style lipgloss.Style
}

func (s lipglossTextStyle) Render(text string) string {
	return s.style.Render(text)
}

// LipglossStyleProvider styles output with lipgloss, using the colour profile termenv
// detects for the destination writer.
type LipglossStyleProvider struct {
	renderer *lipgloss.Renderer
	styles   map[SemanticType]lipgloss.Style
}

// NewLipglossStyleProvider creates a style provider rendering for w.
func NewLipglossStyleProvider(w io.Writer) *LipglossStyleProvider {
	r := lipgloss.NewRenderer(w)
	return &LipglossStyleProvider{
		renderer: r,
		styles: map[SemanticType]lipgloss.Style{
			SemanticInfo:      r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
			SemanticWarning:   r.NewStyle().Foreground(lipgloss.Color("214")),
			SemanticError:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			SemanticHeader:    r.NewStyle().Bold(true),
			SemanticCommand:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
			SemanticHighlight: r.NewStyle().Foreground(lipgloss.Color("99")),
		},
	}
}

// GetStyle implements StyleProvider.GetStyle. Unknown semantics render unstyled.
func (l *LipglossStyleProvider) GetStyle(semantic string) TextStyle {
	if style, ok := l.styles[SemanticType(semantic)]; ok {
		return lipglossTextStyle{style: style}
	}
	return plainTextStyle{}
}

// IsAvailable reports whether the destination supports any colour at all.
func (l *LipglossStyleProvider) IsAvailable() bool {
	return l.renderer.ColorProfile() != termenv.Ascii
}
