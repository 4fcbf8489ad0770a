// Package catalog builds the command prefix tree from the service's command catalog and
// resolves abbreviated, multi-word commands against it.
package catalog

import (
	"sort"

	"bofhshell/pkg/bofhtypes"
)

// Node is one path segment of the command tree. Each node is owned by its parent.
type Node struct {
	children map[string]*Node
	keys     []string
	// terminal is set when a command definition's path ends at this node.
	terminal bool
}

func newNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

// Child returns the child node for segment, or nil.
func (n *Node) Child(segment string) *Node {
	return n.children[segment]
}

// Segments returns the child segment strings in lexical order.
func (n *Node) Segments() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Terminal reports whether some command path ends exactly at this node.
func (n *Node) Terminal() bool {
	return n.terminal
}

// Trie is the immutable command tree built from one catalog.
type Trie struct {
	root  *Node
	depth int
}

// Build inserts every definition's path, one segment at a time, creating a child per
// segment not yet present. The catalog is not modified.
func Build(commands bofhtypes.CommandCatalog) *Trie {
	root := newNode()
	depth := 0
	for _, def := range commands {
		depth = max(depth, len(def.Path))
		node := root
		for _, segment := range def.Path {
			child, ok := node.children[segment]
			if !ok {
				child = newNode()
				node.children[segment] = child
			}
			node = child
		}
		if len(def.Path) > 0 {
			node.terminal = true
		}
	}
	root.freeze()
	return &Trie{root: root, depth: depth}
}

// freeze records the sorted child keys once the tree is complete.
func (n *Node) freeze() {
	n.keys = make([]string, 0, len(n.children))
	for segment, child := range n.children {
		n.keys = append(n.keys, segment)
		child.freeze()
	}
	sort.Strings(n.keys)
}

// Depth returns the number of segments of the longest command path.
func (t *Trie) Depth() int {
	return t.depth
}

// Children returns the sorted segments below the given path, or nil if the path does not
// exist.
func (t *Trie) Children(path ...string) []string {
	node := t.root
	for _, segment := range path {
		node = node.Child(segment)
		if node == nil {
			return nil
		}
	}
	return node.Segments()
}

// Equal reports whether two tries have the same structure.
func (t *Trie) Equal(other *Trie) bool {
	if t == nil || other == nil {
		return t == other
	}
	return equalNodes(t.root, other.root)
}

func equalNodes(a, b *Node) bool {
	if a.terminal != b.terminal || len(a.children) != len(b.children) {
		return false
	}
	for segment, childA := range a.children {
		childB, ok := b.children[segment]
		if !ok || !equalNodes(childA, childB) {
			return false
		}
	}
	return true
}
