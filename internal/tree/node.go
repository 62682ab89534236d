// Package tree holds the in-memory project tree produced by a source
// (archive or directory) and consumed by the filter engine and printer.
package tree

import (
	"sort"
	"strings"
)

// Kind distinguishes directories from files
type Kind uint8

const (
	// KindDirectory is a node that may hold children
	KindDirectory Kind = iota
	// KindFile is a leaf node that may carry content
	KindFile
)

// String returns a short label for the kind
func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "dir"
}

// Node is one file-system entry of an imported project.
//
// Path is the slash-joined chain of ancestor names including the root name,
// so it is unique across the tree. Included is derived by the filter engine.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     Kind    `json:"kind"`
	Included bool    `json:"included"`
	Size     int64   `json:"size,omitempty"`
	Content  string  `json:"content,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// NewRoot creates the synthetic project root directory
func NewRoot(name string) *Node {
	return &Node{
		Name:     name,
		Path:     name,
		Kind:     KindDirectory,
		Included: true,
	}
}

// IsDir reports whether n is a directory
func (n *Node) IsDir() bool {
	return n != nil && n.Kind == KindDirectory
}

// Child returns the direct child with the given name, or nil
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddDir returns the child directory called name, creating it when missing
func (n *Node) AddDir(name string) *Node {
	if c := n.Child(name); c != nil {
		return c
	}
	c := &Node{
		Name:     name,
		Path:     n.Path + "/" + name,
		Kind:     KindDirectory,
		Included: true,
	}
	n.Children = append(n.Children, c)
	return c
}

// AddFile returns the child file called name, creating it when missing.
// The content of an existing file is replaced.
func (n *Node) AddFile(name, content string) *Node {
	if c := n.Child(name); c != nil {
		c.Content = content
		return c
	}
	c := &Node{
		Name:     name,
		Path:     n.Path + "/" + name,
		Kind:     KindFile,
		Included: true,
		Content:  content,
	}
	n.Children = append(n.Children, c)
	return c
}

// AddPath creates every missing directory along rel and returns the final node.
// The last segment becomes a file unless isDir is set.
func (n *Node) AddPath(rel string, isDir bool) *Node {
	parts := splitPath(rel)
	cur := n
	for i, part := range parts {
		if i == len(parts)-1 && !isDir {
			return cur.AddFile(part, "")
		}
		cur = cur.AddDir(part)
	}
	return cur
}

// RelPath returns the path relative to the project root ("" for the root)
func (n *Node) RelPath() string {
	if n == nil {
		return ""
	}
	if i := strings.IndexByte(n.Path, '/'); i >= 0 {
		return n.Path[i+1:]
	}
	return ""
}

// Ext returns the file extension without the dot, or "" when there is none
func (n *Node) Ext() string {
	i := strings.LastIndexByte(n.Name, '.')
	if i < 0 || i == len(n.Name)-1 {
		return ""
	}
	return n.Name[i+1:]
}

// Clone returns a deep copy of the subtree rooted at n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// SetIncluded sets the flag on n and its whole subtree
func (n *Node) SetIncluded(included bool) {
	if n == nil {
		return
	}
	n.Included = included
	for _, c := range n.Children {
		c.SetIncluded(included)
	}
}

// Less orders directories before files, then by name
func Less(a, b *Node) bool {
	if a.Kind != b.Kind {
		return a.Kind == KindDirectory
	}
	return a.Name < b.Name
}

// Sorted returns the children of n in display order without touching n
func (n *Node) Sorted() []*Node {
	out := make([]*Node, len(n.Children))
	copy(out, n.Children)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Sort orders every child list of the subtree in place
func Sort(n *Node) {
	if n == nil || len(n.Children) == 0 {
		return
	}
	sort.SliceStable(n.Children, func(i, j int) bool { return Less(n.Children[i], n.Children[j]) })
	for _, c := range n.Children {
		Sort(c)
	}
}

func splitPath(p string) []string {
	raw := strings.Split(strings.Trim(p, "/"), "/")
	parts := raw[:0]
	for _, s := range raw {
		if s != "" && s != "." {
			parts = append(parts, s)
		}
	}
	return parts
}
