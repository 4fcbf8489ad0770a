package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// bracketStyles wraps text in the name of its semantic.
type bracketStyles struct {
	available bool
}

func (b bracketStyles) GetStyle(semantic string) TextStyle {
	return bracketStyle(semantic)
}

func (b bracketStyles) IsAvailable() bool {
	return b.available
}

type bracketStyle string

func (s bracketStyle) Render(text string) string {
	return "[" + string(s) + "]" + text + "[/" + string(s) + "]"
}

func TestPrinterBasicOutput(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), PlainText())

	printer.Print("hello ")
	printer.Println("world")
	printer.Println("number: 42\n")

	assert.Equal(t, "hello world\nnumber: 42\n", buffer.String())
}

func TestPrinterSemanticOutput(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), PlainText())

	printer.Info("information")
	printer.Warning("Value not in list")
	printer.Error("Error: no such user")
	printer.Header("Name    Id")
	printer.Command("jbofh> user info olanor")
	printer.Highlight("Planned downtime on Friday")

	assert.Equal(t, "ℹ information\n"+
		"⚠ Value not in list\n"+
		"Error: no such user\n"+
		"Name    Id\n"+
		"jbofh> user info olanor\n"+
		"Planned downtime on Friday\n", buffer.String())
}

func TestPrinterWithStyleProvider(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), WithStyles(bracketStyles{available: true}))

	printer.Info("test message")
	printer.Error("failed")
	printer.Highlight("motd")

	assert.Equal(t, "[info]test message[/info]\n[error]failed[/error]\n[highlight]motd[/highlight]\n", buffer.String())
	assert.True(t, printer.IsStylable())
}

func TestPrinterWithUnavailableStyleProvider(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), WithStyles(bracketStyles{}))

	printer.Info("test message")

	assert.Equal(t, "ℹ test message\n", buffer.String())
	assert.False(t, printer.IsStylable())
}

func TestPrinterPlainTextOverridesStyles(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), WithStyles(bracketStyles{available: true}), PlainText())

	printer.Info("test message")
	printer.Warning("careful")

	assert.Equal(t, "ℹ test message\n⚠ careful\n", buffer.String())
	assert.False(t, printer.IsStylable())
}

func TestPrinterDefaultsToPlainText(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(WithWriter(&buffer), WithWriter(nil), WithStyles(nil))

	printer.Warning("careful")

	assert.Equal(t, "⚠ careful\n", buffer.String())
}

func TestLipglossStyleProvider_NonTerminal(t *testing.T) {
	provider := NewLipglossStyleProvider(&bytes.Buffer{})

	// A buffer has no colour profile, so the printer must not pick the provider up.
	assert.False(t, provider.IsAvailable())
	printer := NewPrinter(WithWriter(&bytes.Buffer{}), WithStyles(provider))
	assert.False(t, printer.IsStylable())

	assert.Equal(t, "x", provider.GetStyle("unknown").Render("x"))
}

func BenchmarkPrinterPlainOutput(b *testing.B) {
	buffer := &bytes.Buffer{}
	printer := NewPrinter(WithWriter(buffer), PlainText())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		printer.Println("user_info olanor")
		buffer.Reset()
	}
}
