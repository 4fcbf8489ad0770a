package shell

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"bofhshell/internal/catalog"
)

var commandStyle = ansi.Style{}.ForegroundColor(ansi.BrightBlue)

// commandHighlighter implements readline.Painter. It colours the leading words of the
// line once they resolve to a command or a reserved input.
type commandHighlighter struct {
	source  func() *catalog.Catalog
	enabled bool
}

// Paint implements readline.Painter.
func (h *commandHighlighter) Paint(line []rune, _ int) []rune {
	if !h.enabled {
		return line
	}
	end := commandPrefixEnd(string(line), h.source())
	if end == 0 {
		return line
	}
	input := string(line)
	return []rune(commandStyle.Styled(input[:end]) + input[end:])
}

// commandPrefixEnd returns the byte offset where the command words of input end, or 0
// when they do not resolve.
func commandPrefixEnd(input string, cat *catalog.Catalog) int {
	depth := 1
	if cat != nil {
		depth = max(depth, cat.Trie().Depth())
	}
	words, ends := leadingWords(input, depth)
	if len(words) == 0 {
		return 0
	}
	if isReserved(words[0]) {
		return ends[0]
	}
	if cat == nil {
		return 0
	}
	id, args, err := cat.Resolve(words)
	if err != nil || id == "" {
		return 0
	}
	return ends[len(words)-len(args)-1]
}

// leadingWords splits off at most n whitespace separated words and their end offsets.
func leadingWords(input string, n int) ([]string, []int) {
	var words []string
	var ends []int
	start := -1
	for i, r := range input {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, input[start:i])
				ends = append(ends, i)
				start = -1
				if len(words) == n {
					return words, ends
				}
			}
			continue
		}
		if r == '"' || r == '\'' {
			return words, ends
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, strings.TrimSpace(input[start:]))
		ends = append(ends, len(input))
	}
	return words, ends
}
