package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/repoprompt/internal/tree"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "file database", dbPath: filepath.Join(t.TempDir(), "history.db")},
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "history.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.dbPath)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, tt.dbPath, s.Path())
		})
	}
}

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		e := &Entry{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Add(ctx, e))
		assert.Len(t, e.ID, 36)
		assert.Equal(t, LanguageUnknown, e.Language)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)
	assert.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAddDefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	e := &Entry{Name: "p", Language: "Go", FilesCount: 10, AllowedCount: 7, TokensCount: 1234, Size: 2048, Format: "markdown", Source: "/tmp/p.zip"}
	require.NoError(t, s.Add(context.Background(), e))

	got, err := s.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(fixed))
	got.CreatedAt = e.CreatedAt
	assert.Equal(t, e, got)
}

func TestGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, &Entry{ID: "abc-1", Name: "one"}))
	require.NoError(t, s.Add(ctx, &Entry{ID: "abd-2", Name: "two"}))

	e, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "one", e.Name)

	_, err = s.Get(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "a%")
	assert.ErrorIs(t, err, ErrNotFound, "wildcards are literal")
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(ctx, &Entry{Name: n}))
	}
	all, err := s.List(ctx, 0)
	require.NoError(t, err)

	removed, err := s.Delete(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Name, removed.Name)

	_, err = s.Delete(ctx, all[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"typescript wins over javascript", []string{"a.js", "b.js", "c.ts"}, "TypeScript"},
		{"tsx counts as typescript", []string{"App.TSX"}, "TypeScript"},
		{"javascript", []string{"index.jsx"}, "JavaScript"},
		{"python before go", []string{"main.go", "tool.py"}, "Python"},
		{"go", []string{"main.go", "README.md"}, "Go"},
		{"rule order beats file count", []string{"a.go", "b.go", "c.go", "dist/app.js"}, "JavaScript"},
		{"php", []string{"index.php"}, "PHP"},
		{"unknown", []string{"README.md", "Makefile"}, LanguageUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree.NewRoot("p")
			for _, f := range tt.files {
				root.AddPath(f, false)
			}
			assert.Equal(t, tt.want, DetectLanguage(root))
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", FormatRelative(now.Add(-30*time.Second), now))
	assert.Equal(t, "5 min ago", FormatRelative(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3 h ago", FormatRelative(now.Add(-3*time.Hour), now))
	assert.Equal(t, "yesterday", FormatRelative(now.Add(-30*time.Hour), now))
	assert.Equal(t, "4 days ago", FormatRelative(now.Add(-4*24*time.Hour), now))
	assert.Contains(t, FormatRelative(now.Add(-30*24*time.Hour), now), "2024-05-1")
}

func TestTotalSizeAndHeader(t *testing.T) {
	root := tree.NewRoot("p")
	root.AddPath("a", false).Size = 10
	root.AddPath("d/b", false).Size = 32
	assert.Equal(t, int64(42), TotalSize(root))

	h := Header(&Entry{Name: "p", FilesCount: 2, TokensCount: 99})
	assert.Equal(t, "# p\n# Downloaded from History\n# Files: 2\n# Tokens: ~99\n", h)
}
