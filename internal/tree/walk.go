package tree

import "strings"

// WalkFunc is called for every visited node. Returning false skips the
// node's children.
type WalkFunc func(n *Node, depth int) bool

// Walk visits the subtree pre-order in display order
func Walk(root *Node, fn WalkFunc) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn WalkFunc) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Sorted() {
		walk(c, depth+1, fn)
	}
}

// Chain returns the nodes from root to the node addressed by p, or nil.
// p may be the full path (starting with the root name) or a relative path.
func Chain(root *Node, p string) []*Node {
	if root == nil {
		return nil
	}
	p = strings.Trim(p, "/")
	if p == root.Path {
		return []*Node{root}
	}
	p = strings.TrimPrefix(p, root.Path+"/")
	if p == "" {
		return []*Node{root}
	}

	chain := []*Node{root}
	cur := root
	for _, part := range splitPath(p) {
		cur = cur.Child(part)
		if cur == nil {
			return nil
		}
		chain = append(chain, cur)
	}
	return chain
}

// Find returns the node addressed by p, or nil
func Find(root *Node, p string) *Node {
	chain := Chain(root, p)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// Files returns every file node of the subtree in display order
func Files(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node, _ int) bool {
		if n.Kind == KindFile {
			out = append(out, n)
		}
		return true
	})
	return out
}
