package output

// plainTextStyle renders text without styling, behind an optional marker.
type plainTextStyle struct {
	prefix string
}

func (p plainTextStyle) Render(text string) string {
	return p.prefix + text
}

// plainStyleProvider marks info and warnings for plain text output.
// Errors get no marker: every error message of the shell already names itself
// ("Error: ...", "Unknown command ...").
type plainStyleProvider struct{}

var plainStyles StyleProvider = plainStyleProvider{}

func (plainStyleProvider) GetStyle(semantic string) TextStyle {
	switch SemanticType(semantic) {
	case SemanticWarning:
		return plainTextStyle{prefix: "⚠ "}
	case SemanticInfo:
		return plainTextStyle{prefix: "ℹ "}
	default:
		return plainTextStyle{}
	}
}

func (plainStyleProvider) IsAvailable() bool {
	return true
}
