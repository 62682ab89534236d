// Package patterns holds the user-editable deny and allow pattern lists.
package patterns

import "strings"

// List is an ordered set of patterns. Order is insertion order; duplicates
// and blank entries are never stored.
type List struct {
	items []string
}

// NewList builds a list from values, dropping blanks and duplicates
func NewList(values ...string) *List {
	l := &List{}
	for _, v := range values {
		l.Add(v)
	}
	return l
}

// Add appends pattern and reports whether the list changed
func (l *List) Add(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || l.Contains(pattern) {
		return false
	}
	l.items = append(l.items, pattern)
	return true
}

// Remove deletes pattern by value and reports whether it was present
func (l *List) Remove(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	for i, p := range l.items {
		if p == pattern {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAt deletes the pattern at index i and returns it
func (l *List) RemoveAt(i int) (string, bool) {
	if i < 0 || i >= len(l.items) {
		return "", false
	}
	p := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return p, true
}

// Contains reports whether pattern is in the list
func (l *List) Contains(pattern string) bool {
	if l == nil {
		return false
	}
	for _, p := range l.items {
		if p == pattern {
			return true
		}
	}
	return false
}

// Items returns a copy of the patterns in order
func (l *List) Items() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of patterns
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Clear empties the list
func (l *List) Clear() {
	l.items = nil
}

// Lists pairs the deny list with the allow list. A pattern lives in at most
// one of the two: adding to one side removes it from the other.
type Lists struct {
	Deny  *List
	Allow *List
}

// NewLists creates a pair of lists from plain slices
func NewLists(deny, allow []string) *Lists {
	return &Lists{Deny: NewList(deny...), Allow: NewList(allow...)}
}

// AddDeny adds pattern to the deny list, dropping it from the allow list
func (ls *Lists) AddDeny(pattern string) bool {
	ls.Allow.Remove(pattern)
	return ls.Deny.Add(pattern)
}

// AddAllow adds pattern to the allow list, dropping it from the deny list
func (ls *Lists) AddAllow(pattern string) bool {
	ls.Deny.Remove(pattern)
	return ls.Allow.Add(pattern)
}

// RemoveDeny removes pattern from the deny list
func (ls *Lists) RemoveDeny(pattern string) bool {
	return ls.Deny.Remove(pattern)
}

// RemoveAllow removes pattern from the allow list
func (ls *Lists) RemoveAllow(pattern string) bool {
	return ls.Allow.Remove(pattern)
}

// Clear empties both lists
func (ls *Lists) Clear() {
	ls.Deny.Clear()
	ls.Allow.Clear()
}

// Snapshot is the serializable form of Lists
type Snapshot struct {
	Deny  []string `yaml:"deny" json:"deny"`
	Allow []string `yaml:"allow" json:"allow"`
}

// Snapshot returns a copy of both lists
func (ls *Lists) Snapshot() Snapshot {
	return Snapshot{Deny: ls.Deny.Items(), Allow: ls.Allow.Items()}
}

// Lists rebuilds mutable lists from a snapshot
func (s Snapshot) Lists() *Lists {
	return NewLists(s.Deny, s.Allow)
}
