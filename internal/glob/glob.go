// Package glob implements the tiered pattern syntax used by deny and allow lists.
//
// Patterns are tried against a slash-separated path relative to the project
// root. The first matching form wins:
//
//   - ".tsx"            extension shorthand, the final segment ends with it
//   - "*.test.js"       bare-name glob, matched against the final segment
//   - "node_modules"    bare name, equal to the final or any intermediate segment
//   - "src/**/*.ts"     recursive glob against the whole path
//   - "src/*.ts"        path-qualified glob against the whole path
//
// In glob forms "**" matches any run of characters including "/", "*" any run
// without "/", and "?" one character other than "/". Every other character is
// literal. Matching never fails: a pattern that cannot be compiled matches nothing.
package glob

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gobwas "github.com/gobwas/glob"
)

const separator = '/'

// cache maps a glob expression to its compiled form; a nil value marks an
// expression that failed to compile.
var cache sync.Map

// Match reports whether path matches pattern
func Match(path, pattern string) bool {
	if pattern == "" {
		return false
	}
	path = strings.TrimPrefix(path, "/")
	name := base(path)

	hasSlash := strings.ContainsRune(pattern, '/')
	hasStar := strings.ContainsRune(pattern, '*')

	switch {
	case strings.HasPrefix(pattern, ".") && !hasSlash && !hasStar:
		return strings.HasSuffix(name, pattern)

	case hasStar && !hasSlash:
		return compiled(pattern).match(name)

	case !hasSlash && !hasStar:
		if name == pattern {
			return true
		}
		for _, seg := range strings.Split(path, "/") {
			if seg == pattern {
				return true
			}
		}
		return false

	default:
		// "**" and plain path-qualified globs share one compilation, anchored
		// at both ends of the whole path.
		return compiled(strings.TrimPrefix(pattern, "/")).match(path)
	}
}

// MatchAny reports whether any pattern matches path
func MatchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if Match(path, p) {
			return true
		}
	}
	return false
}

// Lint reports whether pattern is clean glob syntax. It is advisory: Match
// accepts every pattern and treats brackets and braces literally.
func Lint(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	return doublestar.ValidatePattern(pattern)
}

type matcher struct {
	g gobwas.Glob
}

func (m *matcher) match(s string) bool {
	return m != nil && m.g != nil && m.g.Match(s)
}

func compiled(expr string) *matcher {
	if v, ok := cache.Load(expr); ok {
		return v.(*matcher)
	}

	m := &matcher{}
	if g, err := gobwas.Compile(escape(expr), separator); err == nil {
		m.g = g
	}
	v, _ := cache.LoadOrStore(expr, m)
	return v.(*matcher)
}

// escape quotes everything gobwas treats as syntax except the three wildcards.
func escape(expr string) string {
	var b strings.Builder
	b.Grow(len(expr) + 4)
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '[', ']', '{', '}', '\\', '!', ',', '-', '^':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func base(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
