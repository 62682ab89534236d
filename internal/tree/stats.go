package tree

import (
	"sync"
	"unicode/utf8"
)

// TokenCounter turns text into a token count
type TokenCounter interface {
	Count(text string) int
}

// Estimator is the default TokenCounter: one token per four characters, rounded up
type Estimator struct{}

// Count implements TokenCounter
func (Estimator) Count(text string) int {
	return EstimateTokens(text)
}

// EstimateTokens returns ceil(characters / 4); empty text is zero tokens
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Stats summarizes the files of a filtered tree
type Stats struct {
	Total    int `json:"total"`
	Included int `json:"included"`
	Excluded int `json:"excluded"`
	Tokens   int `json:"tokens"`
}

// Collect computes file statistics for root. Tokens are counted over
// included files only. A nil counter falls back to Estimator.
func Collect(root *Node, counter TokenCounter) Stats {
	if counter == nil {
		counter = Estimator{}
	}
	var s Stats
	Walk(root, func(n *Node, _ int) bool {
		if n.Kind != KindFile {
			return true
		}
		s.Total++
		if n.Included {
			s.Included++
			s.Tokens += counter.Count(n.Content)
		} else {
			s.Excluded++
		}
		return true
	})
	return s
}

// Skipped is one entry a source dropped while building a tree
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	IsDir  bool   `json:"is_dir"`
}

// SkipTracker collects skipped entries from concurrent producers
type SkipTracker struct {
	items []Skipped
	mutex sync.Mutex
}

// NewSkipTracker creates a tracker with the given initial capacity
func NewSkipTracker(capacity int) *SkipTracker {
	return &SkipTracker{items: make([]Skipped, 0, capacity)}
}

// Track records one skipped entry
func (st *SkipTracker) Track(path, reason string, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, Skipped{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns a copy of the tracked entries
func (st *SkipTracker) Items() []Skipped {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	out := make([]Skipped, len(st.items))
	copy(out, st.items)
	return out
}
