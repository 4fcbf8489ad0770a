// Package completion bridges the command resolver to the line editor's tab completion.
package completion

// Sequence is a restartable sequence of completion candidates, materialized once per
// completion gesture and consumed one element per call.
type Sequence struct {
	items []string
	next  int
}

// NewSequence returns a sequence positioned before its first item.
func NewSequence(items []string) *Sequence {
	return &Sequence{items: items}
}

// Next returns the next candidate, or false once the sequence is exhausted.
func (s *Sequence) Next() (string, bool) {
	if s == nil || s.next >= len(s.items) {
		return "", false
	}
	item := s.items[s.next]
	s.next++
	return item, true
}
