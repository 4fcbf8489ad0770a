package catalog

import (
	"fmt"
	"sort"
	"strings"

	"bofhshell/pkg/bofhtypes"
)

// pathSep joins path segments into index keys; it cannot be typed as part of a token.
const pathSep = "\x1f"

// Catalog is the per-session command catalog together with its prefix tree.
// It is built once from the fetched definitions and replaced wholesale on refresh.
type Catalog struct {
	commands bofhtypes.CommandCatalog
	trie     *Trie
	byPath   map[string]string
}

// New builds a Catalog and its trie from the service's command definitions.
func New(commands bofhtypes.CommandCatalog) *Catalog {
	byPath := make(map[string]string, len(commands))
	for id, def := range commands {
		if len(def.Path) == 0 {
			continue
		}
		byPath[strings.Join(def.Path, pathSep)] = id
	}
	return &Catalog{
		commands: commands,
		trie:     Build(commands),
		byPath:   byPath,
	}
}

// Trie returns the command tree.
func (c *Catalog) Trie() *Trie {
	return c.trie
}

// Definition returns the definition of a protocol command id.
func (c *Catalog) Definition(id string) (bofhtypes.CommandDefinition, bool) {
	def, ok := c.commands[id]
	return def, ok
}

// Commands returns the raw catalog. Callers must not modify it.
func (c *Catalog) Commands() bofhtypes.CommandCatalog {
	return c.commands
}

// IDs returns every protocol command id in lexical order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.commands))
	for id := range c.commands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of commands in the catalog.
func (c *Catalog) Len() int {
	return len(c.commands)
}

// Lookup translates a canonicalized command line into its protocol command id and the
// leading arguments the operator already typed. The longest matching path wins.
func (c *Catalog) Lookup(tokens []string) (string, []string, error) {
	for n := len(tokens); n > 0; n-- {
		if id, ok := c.byPath[strings.Join(tokens[:n], pathSep)]; ok {
			args := make([]string, len(tokens)-n)
			copy(args, tokens[n:])
			return id, args, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s", bofhtypes.ErrUnknownCommand, strings.Join(tokens, " "))
}

// Resolve canonicalizes a typed command line and translates it to a protocol command.
func (c *Catalog) Resolve(tokens []string) (string, []string, error) {
	resolved, err := ResolveCommand(c.trie, tokens)
	if err != nil {
		return "", nil, err
	}
	return c.Lookup(resolved)
}
