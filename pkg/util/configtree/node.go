// Package configtree provides a read-only, path addressable view of YAML
// documents.
//
// Lookups never fail: asking for a child that does not exist returns a
// virtual Node, so callers can walk deep paths and check Virtual once at the end.
package configtree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Node is a node of a loaded document.
// The zero value is a virtual root node.
type Node struct {
	key  string
	node *yaml.Node // nil if virtual
}

// Entry is a key and its child node of a mapping node.
type Entry struct {
	Key  string
	Node Node
}

// Load reads and parses the YAML document at path.
//
// A file that does not exist yields an empty virtual root.
func Load(path string) (Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Node{}, nil
		}
		return Node{}, err
	}
	n, err := Parse(b)
	if err != nil {
		return Node{}, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return n, nil
}

// Parse parses a YAML document.
func Parse(b []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Node{}, err
	}
	return wrap("", &doc), nil
}

func wrap(key string, n *yaml.Node) Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return Node{key: key}
			}
			n = n.Content[0]
			continue
		case yaml.AliasNode:
			n = n.Alias
			continue
		case yaml.ScalarNode:
			if n.Tag == "!!null" {
				return Node{key: key}
			}
		case 0:
			return Node{key: key}
		}
		break
	}
	return Node{key: key, node: n}
}

// Key returns the key of this node in its parent.
func (n Node) Key() string { return n.key }

// Virtual reports whether the node is absent from the document.
func (n Node) Virtual() bool { return n.node == nil }

// IsMap reports whether the node is a mapping.
func (n Node) IsMap() bool { return n.node != nil && n.node.Kind == yaml.MappingNode }

// IsList reports whether the node is a sequence.
func (n Node) IsList() bool { return n.node != nil && n.node.Kind == yaml.SequenceNode }

// IsScalar reports whether the node holds a single value.
func (n Node) IsScalar() bool { return n.node != nil && n.node.Kind == yaml.ScalarNode }

// Node returns the descendant at path.
// Non-mapping nodes have no children.
func (n Node) Node(path ...string) Node {
	cur := n
	for _, k := range path {
		cur = cur.child(k)
		if cur.Virtual() {
			return Node{key: path[len(path)-1]}
		}
	}
	return cur
}

func (n Node) child(key string) Node {
	if !n.IsMap() {
		return Node{key: key}
	}
	c := n.node.Content
	for i := 0; i+1 < len(c); i += 2 {
		if c[i].Value == key {
			return wrap(key, c[i+1])
		}
	}
	return Node{key: key}
}

// ChildrenMap returns the non-virtual children of a mapping node in document order.
func (n Node) ChildrenMap() []Entry {
	if !n.IsMap() {
		return nil
	}
	c := n.node.Content
	entries := make([]Entry, 0, len(c)/2)
	for i := 0; i+1 < len(c); i += 2 {
		child := wrap(c[i].Value, c[i+1])
		if child.Virtual() {
			continue
		}
		entries = append(entries, Entry{Key: child.key, Node: child})
	}
	return entries
}

// Keys returns all keys of a mapping node in document order,
// including keys whose value is null.
func (n Node) Keys() []string {
	if !n.IsMap() {
		return nil
	}
	c := n.node.Content
	keys := make([]string, 0, len(c)/2)
	for i := 0; i+1 < len(c); i += 2 {
		keys = append(keys, c[i].Value)
	}
	return keys
}

// ChildrenList returns the non-virtual elements of a sequence node.
func (n Node) ChildrenList() []Node {
	if !n.IsList() {
		return nil
	}
	list := make([]Node, 0, len(n.node.Content))
	for i, c := range n.node.Content {
		child := wrap(strconv.Itoa(i), c)
		if child.Virtual() {
			continue
		}
		list = append(list, child)
	}
	return list
}

// String returns the scalar value or "" for non-scalar nodes.
func (n Node) String() string {
	if !n.IsScalar() {
		return ""
	}
	return n.node.Value
}

// Strings returns the scalar elements of a sequence node.
// A scalar node is returned as a single element.
func (n Node) Strings() []string {
	switch {
	case n.IsScalar():
		return []string{n.node.Value}
	case n.IsList():
		var s []string
		for _, c := range n.ChildrenList() {
			if c.IsScalar() {
				s = append(s, c.node.Value)
			}
		}
		return s
	}
	return nil
}

// Bool returns the boolean value of a scalar node and whether it was one.
func (n Node) Bool() (value bool, ok bool) {
	if !n.IsScalar() {
		return false, false
	}
	var b bool
	if err := n.node.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}
