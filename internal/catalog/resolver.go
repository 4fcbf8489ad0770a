package catalog

import (
	"fmt"
	"strings"

	"bofhshell/internal/logger"
	"bofhshell/pkg/bofhtypes"
)

// ResolveAll is the depth sentinel requesting full resolution of a command line.
const ResolveAll = -1

// ResolutionKind tags a Resolution.
type ResolutionKind int

const (
	// Resolved means every command segment was expanded to its full form.
	Resolved ResolutionKind = iota
	// Candidates is the accepted-segment list at the requested depth.
	Candidates
	// Ambiguous means more than one segment matched at some level.
	Ambiguous
	// Unknown means a typed token matched nothing, or the command stops before a leaf.
	Unknown
)

// Resolution is the result of Resolve: Resolved(tokens) | Candidates(list) | Ambiguous(count).
type Resolution struct {
	Kind ResolutionKind
	// Tokens is the canonicalized copy of the input for Resolved.
	Tokens []string
	// Candidates holds accepted segments for Candidates and Ambiguous.
	Candidates []string
	// Level is the depth at which resolution stopped.
	Level int
	// Incomplete is set on Unknown when the operator stopped before a leaf.
	Incomplete bool
}

// Count returns the number of accepted candidates.
func (r Resolution) Count() int {
	return len(r.Candidates)
}

// Resolve matches tokens against the trie level by level. A nonnegative depth returns the
// segments accepted at that depth (tab completion); ResolveAll canonicalizes the whole
// command. The caller's slice is never modified.
func Resolve(t *Trie, tokens []string, depth int) Resolution {
	out := make([]string, len(tokens))
	copy(out, tokens)

	node := t.root
	for level := 0; ; level++ {
		if depth < 0 && level >= len(out) && node.terminal {
			return Resolution{Kind: Resolved, Tokens: out, Level: level}
		}

		accepted := acceptedAt(node, out, level)
		if depth == level {
			return Resolution{Kind: Candidates, Candidates: accepted, Level: level}
		}

		switch {
		case len(accepted) == 0:
			// Only reachable when a typed token matches no segment.
			return Resolution{Kind: Unknown, Level: level}
		case len(accepted) > 1:
			return Resolution{Kind: Ambiguous, Candidates: accepted, Level: level}
		}

		if level >= len(out) {
			// A single possible continuation, but there is no typed token to rewrite.
			return Resolution{Kind: Unknown, Level: level, Incomplete: true}
		}

		out[level] = accepted[0]
		node = node.children[accepted[0]]
		if node.IsLeaf() && depth < 0 {
			return Resolution{Kind: Resolved, Tokens: out, Level: level + 1}
		}
	}
}

// acceptedAt applies the per-level matching rule: every segment is accepted when the
// operator has not typed that far; otherwise a segment is accepted when the token is a
// non-empty prefix of it, and an exact match wins outright.
func acceptedAt(node *Node, tokens []string, level int) []string {
	if level >= len(tokens) {
		return node.Segments()
	}
	token := tokens[level]
	if token == "" {
		return nil
	}
	var accepted []string
	for _, segment := range node.keys {
		if !strings.HasPrefix(segment, token) {
			continue
		}
		if segment == token {
			return []string{segment}
		}
		accepted = append(accepted, segment)
	}
	return accepted
}

// ResolveCommand canonicalizes a full command line and maps failed resolutions to the
// error taxonomy.
func ResolveCommand(t *Trie, tokens []string) ([]string, error) {
	res := Resolve(t, tokens, ResolveAll)
	switch res.Kind {
	case Resolved:
		return res.Tokens, nil
	case Ambiguous:
		logger.Debug("Ambiguous command", "tokens", tokens, "level", res.Level, "matches", res.Candidates)
		return nil, &bofhtypes.AmbiguousCommandError{Level: res.Level, Count: res.Count(), Candidates: res.Candidates}
	case Unknown:
		if res.Incomplete || res.Level >= len(tokens) {
			return nil, fmt.Errorf("%w: incomplete command %q", bofhtypes.ErrUnknownCommand, strings.Join(tokens, " "))
		}
		return nil, fmt.Errorf("%w: %s", bofhtypes.ErrUnknownCommand, tokens[res.Level])
	default:
		logger.Error("Resolver returned candidates in resolution mode", "tokens", tokens)
		return nil, fmt.Errorf("%w: resolver returned candidates for %v", bofhtypes.ErrInternal, tokens)
	}
}
