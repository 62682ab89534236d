package glob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		// extension shorthand
		{"ext final segment", "src/App.tsx", ".tsx", true},
		{"ext top level", "App.tsx", ".tsx", true},
		{"ext other", "src/App.ts", ".tsx", false},
		{"ext suffix of name", "config/.env", ".env", true},
		{"ext does not look at dirs", "x.tsx/readme", ".tsx", false},

		// bare-name glob
		{"name glob nested", "src/b.test.ts", "*.test.ts", true},
		{"name glob top level", "b.test.ts", "*.test.ts", true},
		{"name glob miss", "src/a.ts", "*.test.ts", false},
		{"name glob question", "src/a1.go", "a?*.go", true},
		{"question mark alone is literal", "src/a1.go", "a?.go", false},
		{"name glob star not across slash", "a/b.min.js", "*.min.js", true},
		{"name glob env local", ".env.production.local", ".env.*.local", true},

		// bare name
		{"bare final", "pkg/node_modules", "node_modules", true},
		{"bare intermediate", "node_modules/pkg/index.js", "node_modules", true},
		{"bare partial segment", "my_node_modules/x", "node_modules", false},
		{"bare question is literal", "a?", "a?", true},
		{"bare question no wildcard", "ab", "a?", false},

		// recursive glob
		{"recursive", "src/a/b/c.ts", "src/**/*.ts", true},
		{"recursive needs a dir", "src/c.ts", "src/**/*.ts", false},
		{"recursive leading", "deep/x/y.go", "**/y.go", true},
		{"recursive tail", "dist/a/b/c", "dist/**", true},
		{"recursive anchored", "x/dist/a", "dist/**", false},

		// path-qualified glob
		{"path star", "src/App.tsx", "src/*.tsx", true},
		{"path star no descent", "src/ui/App.tsx", "src/*.tsx", false},
		{"path exact", "node_modules/pkg/index.js", "node_modules/pkg/index.js", true},
		{"path question", "src/a.go", "src/?.go", true},
		{"path dot is literal", "a/srcXa", "a/src.a", false},
		{"path leading slash", "src/App.tsx", "/src/App.tsx", true},

		// literal metacharacters
		{"brackets literal", "src/[id].tsx", "src/[id].tsx", true},
		{"brackets are not classes", "src/i.tsx", "src/[id].tsx", false},
		{"braces literal", "a/{x,y}.txt", "a/{x,y}.txt", true},
		{"braces not alternation", "a/x.txt", "a/{x,y}.txt", false},
		{"plus literal", "a/c++/b.h", "a/c++/*.h", true},

		{"empty pattern", "a", "", false},
		{"leading slash path", "/src/App.tsx", "src/*.tsx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.path, tt.pattern), "Match(%q, %q)", tt.path, tt.pattern)
		})
	}
}

func TestExtensionShorthandIsSuffixOfFinalSegment(t *testing.T) {
	paths := []string{"a.ts", "src/a.tsx", "lib/.ts", "x.ts/y", "deep/nested/file.d.ts", "ts"}
	patterns := []string{".ts", ".tsx", ".d.ts"}
	for _, p := range paths {
		for _, pat := range patterns {
			want := strings.HasSuffix(base(p), pat)
			assert.Equal(t, want, Match(p, pat), "Match(%q, %q)", p, pat)
		}
	}
}

func TestMatchAny(t *testing.T) {
	assert.True(t, MatchAny("src/app.log", []string{"dist", "*.log"}))
	assert.False(t, MatchAny("src/app.go", []string{"dist", "*.log"}))
	assert.False(t, MatchAny("src/app.go", nil))
}

func TestMatchNeverPanicsOnOddInput(t *testing.T) {
	odd := []string{"[", "]", "{", "\\", "***", "a/**/**", "?", "/", "//", "[!a-z]*"}
	for _, p := range odd {
		assert.NotPanics(t, func() {
			Match("some/path/file.txt", p)
		}, "pattern %q", p)
	}
}

func TestCompiledIsCached(t *testing.T) {
	a := compiled("cache/*.go")
	b := compiled("cache/*.go")
	assert.Same(t, a, b)
}

func TestLint(t *testing.T) {
	assert.True(t, Lint("src/**/*.ts"))
	assert.True(t, Lint("node_modules"))
	assert.False(t, Lint("src/[abc"))
	assert.False(t, Lint("   "))
}
