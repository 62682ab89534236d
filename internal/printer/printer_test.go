package printer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/repoprompt/internal/tree"
)

var fixedClock = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC) }

// sampleTree builds:
//
//	demo/
//	  src/main.go
//	  src/util/strings.go
//	  node_modules/pkg/index.js   (excluded)
//	  README.md
//	  Makefile
//	  empty.txt                   (no content)
func sampleTree() *tree.Node {
	root := tree.NewRoot("demo")
	root.AddPath("src/main.go", false).Content = "package main"
	root.AddPath("src/util/strings.go", false).Content = "package util"
	root.AddPath("node_modules/pkg/index.js", false).Content = "module.exports = 1"
	root.AddPath("README.md", false).Content = "# Demo"
	root.AddPath("Makefile", false).Content = "all:\n\tgo build"
	root.AddPath("empty.txt", false)

	root.SetIncluded(true)
	tree.Find(root, "node_modules").SetIncluded(false)
	return root
}

func TestStructure(t *testing.T) {
	want := []string{
		"📁 demo/",
		"├── 📁 src/",
		"│   ├── 📁 util/",
		"│   │   └── 📄 strings.go",
		"│   └── 📄 main.go",
		"├── 📄 Makefile",
		"├── 📄 README.md",
		"└── 📄 empty.txt",
	}
	assert.Equal(t, want, Structure(sampleTree()))
}

func TestStructureExcludedRoot(t *testing.T) {
	root := sampleTree()
	root.Included = false
	assert.Empty(t, Structure(root))
	assert.Empty(t, Structure(nil))
}

func TestContentsPlain(t *testing.T) {
	blocks := Contents(sampleTree(), FormatPlain)
	require.Len(t, blocks, 4)

	rule := strings.Repeat("─", 60)
	assert.Equal(t, "\n"+rule+"\n📄 src/util/strings.go\n"+rule+"\npackage util\n", blocks[0])
	assert.Contains(t, blocks[1], "📄 src/main.go")
	assert.Contains(t, blocks[2], "📄 Makefile")
	assert.Contains(t, blocks[3], "📄 README.md")

	for _, b := range blocks {
		assert.NotContains(t, b, "node_modules")
		assert.NotContains(t, b, "empty.txt")
	}
}

func TestContentsMarkdown(t *testing.T) {
	blocks := Contents(sampleTree(), FormatMarkdown)
	require.Len(t, blocks, 4)

	assert.Equal(t, "\n### `src/util/strings.go`\n\n```go\npackage util\n```\n", blocks[0])
	assert.Contains(t, blocks[2], "```txt\nall:")
	assert.Contains(t, blocks[3], "```md\n# Demo\n```")
}

func TestFenceGrowsPastContent(t *testing.T) {
	assert.Equal(t, "```", Fence("no ticks"))
	assert.Equal(t, "```", Fence("inline `code` only"))
	assert.Equal(t, "````", Fence("```go\nx\n```"))
	assert.Equal(t, "``````", Fence("`````"))

	root := tree.NewRoot("p")
	root.AddPath("doc.md", false).Content = "```sh\nls\n```"
	root.SetIncluded(true)
	blocks := Contents(root, FormatMarkdown)
	require.Len(t, blocks, 1)
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(blocks[0], "\n### `doc.md`\n\n"), "````md\n"))
}

func TestContentsRoundTrip(t *testing.T) {
	root := sampleTree()
	root.SetIncluded(true)

	var want []string
	for _, f := range tree.Files(root) {
		if f.Content != "" {
			want = append(want, f.Content)
		}
	}

	rule := strings.Repeat("─", 60)
	var got []string
	for _, block := range Contents(root, FormatPlain) {
		// "\n" rule "\n📄 path\n" rule "\n" content "\n"
		parts := strings.SplitN(block, rule+"\n", 3)
		require.Len(t, parts, 3)
		got = append(got, strings.TrimSuffix(parts[2], "\n"))
	}
	assert.Equal(t, want, got)
}

func TestPlainBundle(t *testing.T) {
	var buf bytes.Buffer
	p := New().WithOutput(&buf).WithClock(fixedClock).WithColors(false)

	require.NoError(t, p.PrintBundle(sampleTree()))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.Equal(t, "╔"+strings.Repeat("═", 60)+"╗", lines[0])
	assert.Equal(t, "║  Project: demo"+strings.Repeat(" ", 45)+"║", lines[1])
	assert.Contains(t, out, "║  2024-03-09 14:05:00")
	assert.Contains(t, out, "║  Files: 5/6")
	assert.Contains(t, out, "📂 PROJECT STRUCTURE")
	assert.Contains(t, out, "📝 FILE CONTENTS")
	assert.Contains(t, out, "📄 src/main.go")
	assert.NotContains(t, out, "module.exports")
	assert.True(t, strings.HasSuffix(out, "End of demo\n"+strings.Repeat("═", 60)+"\n"))
	assert.Equal(t, int64(4), p.GetCount())

	for _, l := range lines[1:7] {
		if strings.HasPrefix(l, "║") {
			assert.Equal(t, 62, len([]rune(l)), l)
		}
	}
}

func TestMarkdownBundle(t *testing.T) {
	out, err := New().WithFormat(FormatMarkdown).WithClock(fixedClock).Render(sampleTree())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# 📦 demo\n\n> Generated by RepoPrompt | 2024-03-09 14:05:00\n"))
	assert.Contains(t, out, "> Files: 5/6 | ~")
	assert.Contains(t, out, "## 📂 Project Structure\n\n```\n📁 demo/\n")
	assert.Contains(t, out, "## 📝 Files\n")
	assert.Contains(t, out, "### `src/main.go`")
	assert.True(t, strings.HasSuffix(out, "\n---\n*End of demo*\n"))
}

func TestJSONBundle(t *testing.T) {
	out, err := New().WithFormat(FormatJSON).WithClock(fixedClock).Render(sampleTree())
	require.NoError(t, err)

	var doc JSONBundle
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "demo", doc.Project)
	assert.Equal(t, 6, doc.Stats.Total)
	assert.Equal(t, 5, doc.Stats.Included)
	require.Len(t, doc.Files, 4)
	assert.Equal(t, "src/util/strings.go", doc.Files[0].Path)
	assert.Equal(t, "package util", doc.Files[0].Content)
	assert.Equal(t, 3, doc.Files[0].Tokens)
	assert.Equal(t, "📁 demo/", doc.Structure[0])
}

func TestJSONBundleBase64(t *testing.T) {
	out, err := New().WithFormat(FormatJSON).WithBase64(true).Render(sampleTree())
	require.NoError(t, err)

	var doc JSONBundle
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "base64", doc.Files[0].Encoding)
	decoded, err := base64.StdEncoding.DecodeString(doc.Files[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "package util", string(decoded))
}

func TestHTMLBundle(t *testing.T) {
	root := sampleTree()
	root.AddPath("x.html", false).Content = "<script>alert(1)</script>"
	root.SetIncluded(true)

	out, err := New().WithFormat(FormatHTML).WithClock(fixedClock).Render(root)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>demo</title>")
	assert.Contains(t, out, "<h1>📦 demo</h1>")
	assert.Contains(t, out, `<code class="language-go">package main`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestPrintStructure(t *testing.T) {
	var buf bytes.Buffer
	New().WithOutput(&buf).WithColors(false).PrintStructure(sampleTree())
	assert.Equal(t, strings.Join(Structure(sampleTree()), "\n")+"\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatPlain,
		"TXT":      FormatPlain,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"json":     FormatJSON,
		"html":     FormatHTML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	_, err = New().WithFormat("pdf").Render(sampleTree())
	assert.Error(t, err)
	_, err = New().Render(nil)
	assert.Error(t, err)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", thousands(0))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,000", thousands(1000))
	assert.Equal(t, "12,345,678", thousands(12345678))
	assert.Equal(t, "-1,234", thousands(-1234))
}
