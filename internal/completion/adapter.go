package completion

import (
	"strings"

	"bofhshell/internal/catalog"
	"bofhshell/internal/logger"
	"bofhshell/internal/parser"
)

// maxCompletionDepth is the first token position that is an argument rather than a
// command segment; argument positions are never completed.
const maxCompletionDepth = 2

// TrieSource returns the command tree of the current catalog, or nil before login.
type TrieSource func() *catalog.Trie

// Adapter turns the resolver's candidate mode into the index-driven completion callback
// of the line editor. It implements readline.AutoCompleter.
type Adapter struct {
	source TrieSource
	seq    *Sequence
}

// NewAdapter returns an Adapter reading the current trie from source on each gesture.
func NewAdapter(source TrieSource) *Adapter {
	return &Adapter{source: source}
}

// Complete is called once per candidate with an increasing call index. Index 0 starts a
// new gesture over buffer; later calls return the following candidates until exhausted.
func (a *Adapter) Complete(buffer string, callIndex int) (string, bool) {
	if callIndex == 0 {
		a.seq = NewSequence(a.Candidates(buffer))
	}
	return a.seq.Next()
}

// Candidates returns the command segments that may be typed at the cursor position at the
// end of buffer.
func (a *Adapter) Candidates(buffer string) []string {
	trie := a.source()
	if trie == nil {
		return nil
	}
	tokens, err := parser.Split(buffer)
	if err != nil {
		logger.Debug("No completion for unparsable buffer", "buffer", buffer, "error", err)
		return nil
	}

	depth := len(tokens)
	if !parser.EndsInSeparator(buffer) {
		depth--
	}
	if depth < 0 {
		depth = 0
	}
	logger.Debug("Completion gesture", "tokens", len(tokens), "depth", depth)
	if depth >= maxCompletionDepth {
		return nil
	}

	res := catalog.Resolve(trie, tokens, depth)
	if res.Kind != catalog.Candidates {
		logger.Debug("No completion candidates", "tokens", tokens, "kind", res.Kind)
		return nil
	}
	return res.Candidates
}

// Do implements readline.AutoCompleter. It runs one completion gesture over the text left
// of the cursor and returns the suffixes that extend the word in progress.
func (a *Adapter) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	buffer := string(line[:pos])
	word := wordInProgress(buffer)

	var suggestions [][]rune
	for i := 0; ; i++ {
		candidate, ok := a.Complete(buffer, i)
		if !ok {
			break
		}
		if !strings.HasPrefix(candidate, word) {
			continue
		}
		suggestions = append(suggestions, []rune(strings.TrimPrefix(candidate, word)+" "))
	}
	return suggestions, len([]rune(word))
}

// wordInProgress returns the partial last word of buffer, or "" after a separator.
func wordInProgress(buffer string) string {
	if buffer == "" || parser.EndsInSeparator(buffer) {
		return ""
	}
	tokens, err := parser.Split(buffer)
	if err != nil || len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
