package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bofhshell/pkg/bofhtypes"
)

func userCatalog() bofhtypes.CommandCatalog {
	return bofhtypes.CommandCatalog{
		"user_create": {Path: []string{"user", "create"}},
		"user_delete": {Path: []string{"user", "delete"}},
		"group_add":   {Path: []string{"group", "add"}},
		"group_addme": {Path: []string{"group", "addme"}},
		"quarantine":  {Path: []string{"quarantine", "show"}},
	}
}

func TestResolve_ExactTokensUnchanged(t *testing.T) {
	trie := Build(userCatalog())

	for _, path := range [][]string{
		{"user", "create"},
		{"user", "delete"},
		{"quarantine", "show"},
	} {
		res := Resolve(trie, path, ResolveAll)
		require.Equal(t, Resolved, res.Kind, "path %v", path)
		assert.Equal(t, path, res.Tokens)
	}
}

func TestResolve_ExpandsAbbreviations(t *testing.T) {
	trie := Build(bofhtypes.CommandCatalog{
		"user_create": {Path: []string{"user", "create"}},
		"user_delete": {Path: []string{"user", "delete"}},
	})

	res := Resolve(trie, []string{"us", "cr"}, ResolveAll)

	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, []string{"user", "create"}, res.Tokens)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	trie := Build(userCatalog())
	tokens := []string{"us", "cr", "olanor"}

	res := Resolve(trie, tokens, ResolveAll)

	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, []string{"user", "create", "olanor"}, res.Tokens)
	assert.Equal(t, []string{"us", "cr", "olanor"}, tokens)
}

func TestResolve_Ambiguous(t *testing.T) {
	trie := Build(bofhtypes.CommandCatalog{
		"user_create": {Path: []string{"user", "create"}},
		"user_cruft":  {Path: []string{"user", "cruft"}},
	})

	res := Resolve(trie, []string{"user", "cr"}, ResolveAll)

	assert.Equal(t, Ambiguous, res.Kind)
	assert.Equal(t, 2, res.Count())
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, []string{"create", "cruft"}, res.Candidates)
}

func TestResolve_ExactMatchWinsOverLongerSibling(t *testing.T) {
	trie := Build(userCatalog())

	res := Resolve(trie, []string{"gr", "add", "foo"}, ResolveAll)

	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, []string{"group", "add", "foo"}, res.Tokens)
}

func TestResolve_CandidatesAtDepth(t *testing.T) {
	trie := Build(userCatalog())

	tests := []struct {
		name     string
		tokens   []string
		depth    int
		expected []string
	}{
		{
			name:     "no tokens lists every top level segment",
			tokens:   nil,
			depth:    0,
			expected: []string{"group", "quarantine", "user"},
		},
		{
			name:     "prefix at first level",
			tokens:   []string{"u"},
			depth:    0,
			expected: []string{"user"},
		},
		{
			name:     "second level after abbreviation",
			tokens:   []string{"gr"},
			depth:    1,
			expected: []string{"add", "addme"},
		},
		{
			name:     "second level prefix",
			tokens:   []string{"user", "d"},
			depth:    1,
			expected: []string{"delete"},
		},
		{
			name:     "exact match only",
			tokens:   []string{"group", "add"},
			depth:    1,
			expected: []string{"add"},
		},
		{
			name:     "no match",
			tokens:   []string{"x"},
			depth:    0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(trie, tt.tokens, tt.depth)
			require.Equal(t, Candidates, res.Kind)
			assert.Equal(t, tt.expected, res.Candidates)
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	trie := Build(userCatalog())

	res := Resolve(trie, []string{"user", "frobnicate"}, ResolveAll)

	assert.Equal(t, Unknown, res.Kind)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.Incomplete)
}

func TestResolve_IncompleteSingleContinuation(t *testing.T) {
	trie := Build(userCatalog())

	res := Resolve(trie, []string{"quar"}, ResolveAll)

	assert.Equal(t, Unknown, res.Kind)
	assert.True(t, res.Incomplete)
}

func TestResolve_ShortPathIsTerminal(t *testing.T) {
	trie := Build(bofhtypes.CommandCatalog{
		"misc_check": {Path: []string{"misc", "check"}},
		"misc":       {Path: []string{"misc"}},
	})

	res := Resolve(trie, []string{"mi"}, ResolveAll)

	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, []string{"misc"}, res.Tokens)
}

func TestResolveCommand_Errors(t *testing.T) {
	trie := Build(bofhtypes.CommandCatalog{
		"user_create": {Path: []string{"user", "create"}},
		"user_cruft":  {Path: []string{"user", "cruft"}},
	})

	_, err := ResolveCommand(trie, []string{"user", "c"})
	var ambiguous *bofhtypes.AmbiguousCommandError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)

	_, err = ResolveCommand(trie, []string{"nope"})
	assert.ErrorIs(t, err, bofhtypes.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "nope")

	_, err = ResolveCommand(Build(bofhtypes.CommandCatalog{}), nil)
	assert.ErrorIs(t, err, bofhtypes.ErrUnknownCommand)
}
