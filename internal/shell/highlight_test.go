package shell

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"bofhshell/internal/catalog"
	"bofhshell/internal/testutils"
	"bofhshell/pkg/bofhtypes"
)

func TestCommandPrefixEnd(t *testing.T) {
	cat := catalog.New(testutils.UserCatalog())

	tests := []struct {
		input    string
		expected int
	}{
		{"user info olanor", len("user info")},
		{"u i olanor", len("u i")},
		{"group list", len("group list")},
		{"  group   list", len("  group   list")},
		{"quit", len("quit")},
		{"source batch.bofh", len("source")},
		{"user", 0},
		{"frobnicate", 0},
		{"", 0},
		{`"user info"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, commandPrefixEnd(tt.input, cat))
		})
	}
}

func TestCommandPrefixEnd_DeepPaths(t *testing.T) {
	cat := catalog.New(bofhtypes.CommandCatalog{
		"entity_note_add":  {Path: []string{"entity", "note", "add"}},
		"entity_note_show": {Path: []string{"entity", "note", "show"}},
		"user_info":        {Path: []string{"user", "info"}},
	})

	assert.Equal(t, len("entity note add"), commandPrefixEnd("entity note add olanor", cat))
	assert.Equal(t, len("e n s"), commandPrefixEnd("e n s olanor", cat))
	assert.Equal(t, len("user info"), commandPrefixEnd("user info olanor extra", cat))
}

func TestCommandPrefixEnd_NoCatalog(t *testing.T) {
	assert.Equal(t, 0, commandPrefixEnd("user info", nil))
	assert.Equal(t, len("help"), commandPrefixEnd("help user", nil))
}

func TestLeadingWords(t *testing.T) {
	words, ends := leadingWords("user  info olanor", 2)
	assert.Equal(t, []string{"user", "info"}, words)
	assert.Equal(t, []int{4, 10}, ends)

	words, ends = leadingWords("user 'x y'", 2)
	assert.Equal(t, []string{"user"}, words)
	assert.Equal(t, []int{4}, ends)
}

func TestCommandHighlighter_Paint(t *testing.T) {
	cat := catalog.New(testutils.UserCatalog())
	line := []rune("user info olanor")

	disabled := &commandHighlighter{source: func() *catalog.Catalog { return cat }}
	assert.Equal(t, line, disabled.Paint(line, len(line)))

	enabled := &commandHighlighter{source: func() *catalog.Catalog { return cat }, enabled: true}
	painted := string(enabled.Paint(line, len(line)))
	assert.Equal(t, "\x1b[94muser info\x1b[m olanor", painted)
	assert.Equal(t, string(line), ansi.Strip(painted))

	unknown := []rune("frobnicate")
	assert.Equal(t, unknown, enabled.Paint(unknown, len(unknown)))
}
