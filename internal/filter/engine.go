// Package filter decides which nodes of a project tree are included in the
// exported bundle.
//
// Precedence for a node whose ancestors are all included:
//
//	included = not default-denied
//	any deny pattern matches  -> excluded
//	any allow pattern matches -> included
//
// An excluded directory excludes its whole subtree; the allow list never
// brings back a node below an excluded ancestor. The project root is always
// included.
package filter

import (
	"github.com/bethropolis/repoprompt/internal/glob"
	"github.com/bethropolis/repoprompt/internal/tree"
	"github.com/bethropolis/repoprompt/internal/utils"
)

// Engine applies default-deny, deny and allow patterns to a tree
type Engine struct {
	defaults []string
	logger   utils.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithDefaults replaces the default-deny catalog
func WithDefaults(patterns []string) Option {
	return func(e *Engine) {
		e.defaults = append([]string(nil), patterns...)
	}
}

// WithLogger sets the logger used for decision tracing
func WithLogger(logger utils.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine using DefaultDeny unless overridden
func New(opts ...Option) *Engine {
	e := &Engine{
		defaults: DefaultDeny,
		logger:   utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns the default-deny catalog in use
func (e *Engine) Defaults() []string {
	return append([]string(nil), e.defaults...)
}

// Apply returns an annotated deep copy of root; root itself is not touched
func (e *Engine) Apply(root *tree.Node, deny, allow []string) *tree.Node {
	snapshot := root.Clone()
	e.Annotate(snapshot, deny, allow)
	return snapshot
}

// Annotate sets Included on every node of root in place, pre-order.
// Calling it again with the same lists yields the same flags.
func (e *Engine) Annotate(root *tree.Node, deny, allow []string) {
	if root == nil {
		return
	}
	root.Included = true
	for _, c := range root.Children {
		e.annotate(c, true, deny, allow)
	}
}

func (e *Engine) annotate(n *tree.Node, parentIncluded bool, deny, allow []string) {
	if !parentIncluded {
		n.SetIncluded(false)
		return
	}

	n.Included = e.decide(n, deny, allow)
	if !n.Included {
		e.logger.Debug("filter: excluded %q", n.RelPath())
	}
	for _, c := range n.Children {
		e.annotate(c, n.Included, deny, allow)
	}
}

// decide evaluates the lists for one node assuming its parent is included
func (e *Engine) decide(n *tree.Node, deny, allow []string) bool {
	rel := n.RelPath()
	included := !e.defaultDenied(n)
	if glob.MatchAny(rel, deny) {
		included = false
	}
	if glob.MatchAny(rel, allow) {
		included = true
	}
	return included
}

func (e *Engine) defaultDenied(n *tree.Node) bool {
	rel := n.RelPath()
	for _, p := range e.defaults {
		if n.Name == p || glob.Match(rel, p) {
			return true
		}
	}
	return false
}

// DefaultIncluded reports the node's own status under the default catalog
// alone, ignoring user lists and ancestors.
func (e *Engine) DefaultIncluded(n *tree.Node) bool {
	if n == nil {
		return false
	}
	if n.RelPath() == "" {
		return true
	}
	for _, p := range e.defaults {
		if n.Name == p || glob.Match(n.Name, p) {
			return false
		}
	}
	return true
}

// Evaluate computes the Included flag of the node at path without touching
// the tree. Unknown paths are reported as excluded.
func (e *Engine) Evaluate(root *tree.Node, path string, deny, allow []string) bool {
	chain := tree.Chain(root, path)
	if len(chain) == 0 {
		return false
	}
	for _, n := range chain[1:] {
		if !e.decide(n, deny, allow) {
			return false
		}
	}
	return true
}
