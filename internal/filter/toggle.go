package filter

import (
	"strings"

	"github.com/bethropolis/repoprompt/internal/patterns"
	"github.com/bethropolis/repoprompt/internal/tree"
)

// ListKind names one of the user pattern lists
type ListKind uint8

const (
	// ListNone means no list was touched
	ListNone ListKind = iota
	// ListDeny is the user deny list
	ListDeny
	// ListAllow is the user allow list
	ListAllow
)

// String returns the list name
func (k ListKind) String() string {
	switch k {
	case ListDeny:
		return "deny"
	case ListAllow:
		return "allow"
	default:
		return "none"
	}
}

// ToggleResult describes what a Toggle changed
type ToggleResult struct {
	Path        string
	RelPath     string
	Pattern     string
	WasIncluded bool
	Included    bool
	// DefaultIncluded is the node's status under the default catalog alone
	DefaultIncluded bool
	RemovedFrom     ListKind
	AddedTo         ListKind
}

// Toggle flips the node at path by editing lists. The pattern is the node's
// relative path; a top-level node gets a leading "/" so the entry names that
// node alone instead of every segment with the same name. The tree is not
// modified; re-run Annotate or Apply to see the new flags.
//
// Excluding first drops the path from the allow list and only adds it to the
// deny list when the node would still be included. Including is symmetric.
// A node under an excluded ancestor stays excluded: its path is added to the
// allow list but Included remains false.
func (e *Engine) Toggle(root *tree.Node, path string, lists *patterns.Lists) (ToggleResult, bool) {
	node := tree.Find(root, path)
	if node == nil || node == root || lists == nil {
		return ToggleResult{}, false
	}

	rel := node.RelPath()
	pattern := NodePattern(rel)
	res := ToggleResult{
		Path:            node.Path,
		RelPath:         rel,
		Pattern:         pattern,
		WasIncluded:     e.Evaluate(root, node.Path, lists.Deny.Items(), lists.Allow.Items()),
		DefaultIncluded: e.DefaultIncluded(node),
	}
	want := !res.WasIncluded

	if want {
		if lists.RemoveDeny(pattern) {
			res.RemovedFrom = ListDeny
		}
		if !e.Evaluate(root, node.Path, lists.Deny.Items(), lists.Allow.Items()) {
			lists.AddAllow(pattern)
			res.AddedTo = ListAllow
		}
	} else {
		if lists.RemoveAllow(pattern) {
			res.RemovedFrom = ListAllow
		}
		if e.Evaluate(root, node.Path, lists.Deny.Items(), lists.Allow.Items()) {
			lists.AddDeny(pattern)
			res.AddedTo = ListDeny
		}
	}

	res.Included = e.Evaluate(root, node.Path, lists.Deny.Items(), lists.Allow.Items())
	e.logger.Debug("filter: toggled %q %v -> %v (removed from %s, added to %s)",
		pattern, res.WasIncluded, res.Included, res.RemovedFrom, res.AddedTo)
	return res, true
}

// NodePattern returns the list entry that addresses exactly the node at rel
func NodePattern(rel string) string {
	if rel == "" || strings.Contains(rel, "/") {
		return rel
	}
	return "/" + rel
}
