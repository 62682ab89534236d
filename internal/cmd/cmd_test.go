package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/repoprompt/internal/config"
	"github.com/bethropolis/repoprompt/internal/history"
)

// env isolates config, state and history files for one test
type env struct {
	t       *testing.T
	dir     string
	project string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	project := filepath.Join(dir, "demo")
	for rel, body := range map[string]string{
		"main.go":          "package main",
		"pkg/util.go":      "package pkg",
		"pkg/util_test.go": "package pkg",
		"docs/guide.md":    "# Guide",
		"dist/bundle.css":  "body {}",
	} {
		path := filepath.Join(project, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return &env{t: t, dir: dir, project: project}
}

func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "missing.yaml"),
		"--state", filepath.Join(e.dir, "state.yaml"),
		"--history-db", filepath.Join(e.dir, "history.db"),
		"--quiet",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, strings.Join(args, " "))
	return out
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "repoprompt version "+config.Version+"\n", e.mustRun("version"))
}

func TestDenyAllowLists(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("deny", "add", "*_test.go", "docs")
	assert.Contains(t, out, `Added "*_test.go" to deny list`)
	assert.Contains(t, out, `Added "docs" to deny list`)

	out = e.mustRun("deny", "add", "docs")
	assert.Contains(t, out, `"docs" is already in the deny list`)

	assert.Equal(t, "  1  *_test.go\n  2  docs\n", e.mustRun("deny", "list"))

	// adding to allow removes it from deny
	e.mustRun("allow", "add", "docs")
	assert.Equal(t, "  1  *_test.go\n", e.mustRun("deny", "list"))
	assert.Equal(t, "  1  docs\n", e.mustRun("allow", "ls"))

	out = e.mustRun("deny", "rm", "--index", "1")
	assert.Contains(t, out, `Removed "*_test.go" from deny list`)
	assert.Equal(t, "The deny list is empty.\n", e.mustRun("deny", "list"))

	out = e.mustRun("allow", "rm", "nope")
	assert.Contains(t, out, `"nope" is not in the allow list`)

	_, err := e.run("", "allow", "rm", "--index", "5")
	assert.Error(t, err)

	_, err = e.run("", "deny", "rm")
	assert.Error(t, err)
}

func TestListClearConfirmation(t *testing.T) {
	e := newEnv(t)
	e.mustRun("deny", "add", "a", "b")

	out, err := e.run("n\n", "deny", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled.")
	assert.Contains(t, e.mustRun("deny", "list"), "a")

	out, err = e.run("y\n", "deny", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 patterns.")
	assert.Equal(t, "The deny list is empty.\n", e.mustRun("deny", "list"))
}

func TestTreeUsesStoredAndFlagLists(t *testing.T) {
	e := newEnv(t)
	e.mustRun("deny", "add", "*_test.go")

	out := e.mustRun("tree", e.project, "--deny", "docs", "--no-color")
	assert.Equal(t, strings.Join([]string{
		"📁 demo/",
		"├── 📁 pkg/",
		"│   └── 📄 util.go",
		"└── 📄 main.go",
	}, "\n")+"\n", out)

	out = e.mustRun("tree", e.project, "--allow", "dist")
	assert.Contains(t, out, "📁 dist/")
	assert.Contains(t, out, "📁 docs/")
}

func TestBundleToFile(t *testing.T) {
	e := newEnv(t)
	target := filepath.Join(e.dir, "prompt.md")

	out := e.mustRun("bundle", e.project, "-f", "md", "-o", target)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# 📦 demo\n"))
	assert.Contains(t, text, "### `pkg/util.go`")
	assert.NotContains(t, text, "dist/bundle.css")
}

func TestBundleJSONToStdout(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("bundle", e.project, "--format", "json", "--base64", "--no-history")
	var doc struct {
		Project string `json:"project"`
		Files   []struct {
			Path     string `json:"path"`
			Encoding string `json:"encoding"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "demo", doc.Project)
	require.NotEmpty(t, doc.Files)
	assert.Equal(t, "base64", doc.Files[0].Encoding)

	assert.Equal(t, "No history yet.\n", e.mustRun("history", "list"))
}

func TestBundleRejectsUnknownFormat(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("", "bundle", e.project, "-f", "pdf")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("stats", e.project)
	assert.Contains(t, out, "Project:   demo")
	assert.Contains(t, out, "Language:  Go")
	assert.Contains(t, out, "Files:     5")
	assert.Contains(t, out, "Included:  4")

	// any script file outranks the Go files, excluded or not
	require.NoError(t, os.WriteFile(filepath.Join(e.project, "dist", "app.js"), []byte("var x"), 0644))
	out = e.mustRun("stats", e.project)
	assert.Contains(t, out, "Language:  JavaScript")
	assert.Contains(t, out, "Files:     6")
}

func TestToggle(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("toggle", e.project, "pkg")
	assert.Equal(t, "pkg is now excluded\n  added to deny list\n", out)
	assert.Equal(t, "  1  /pkg\n", e.mustRun("deny", "list"))

	out = e.mustRun("toggle", e.project, "pkg/util.go")
	assert.Contains(t, out, "pkg/util.go is now excluded")
	assert.Contains(t, out, "added to allow list")
	assert.Contains(t, out, "a parent directory is excluded")

	out = e.mustRun("toggle", e.project, "demo/dist")
	assert.Equal(t, "dist is now included\n  added to allow list\n", out)

	_, err := e.run("", "toggle", e.project, "nope")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("defaults")
	assert.True(t, strings.HasPrefix(out, "Git:\n"))
	assert.Contains(t, out, "node_modules")
	assert.Contains(t, out, "Lock files:")
}

func TestHistoryCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun("bundle", e.project, "-o", filepath.Join(e.dir, "one.txt"))
	e.mustRun("bundle", e.project, "-o", filepath.Join(e.dir, "two.txt"), "-f", "markdown")

	out := e.mustRun("history", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "demo")
	assert.Contains(t, lines[1], "4/5")

	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("history", "list", "--json")), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "markdown", entries[0].Format)
	assert.Equal(t, "plain", entries[1].Format)

	out = e.mustRun("history", "show", entries[1].ID[:8])
	assert.True(t, strings.HasPrefix(out, "# demo\n# Downloaded from History\n# Files: 5\n"))
	assert.Contains(t, out, "# Source: "+e.project)

	out = e.mustRun("history", "rm", entries[1].ID)
	assert.Contains(t, out, "Deleted demo")

	_, err := e.run("", "history", "show", entries[1].ID)
	assert.ErrorIs(t, err, history.ErrNotFound)

	out = e.mustRun("history", "clear", "--yes")
	assert.Equal(t, "Deleted 1 entry.\n", out)
}
