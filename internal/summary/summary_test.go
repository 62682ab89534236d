package summary

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bethropolis/repoprompt/internal/tree"
)

type recorder struct{ lines []string }

func (r *recorder) Info(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestDisplayResults(t *testing.T) {
	r := &recorder{}
	DisplayResults(r, tree.Stats{Total: 5, Included: 3, Excluded: 2, Tokens: 40}, 1234*time.Microsecond, false)
	assert.Equal(t, []string{"Included 3 of 5 files (2 excluded), ~40 tokens.", "Done in 1ms."}, r.lines)

	r = &recorder{}
	DisplayResults(r, tree.Stats{}, time.Second, true)
	assert.Empty(t, r.lines)
}

func TestDisplaySkippedItemsSorted(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer
	items := []tree.Skipped{
		{Path: "z.bin", Reason: "Skipped (Not a Regular File)"},
		{Path: ".git", Reason: "Ignored (Gitignore/Hidden Rule)", IsDir: true},
	}

	DisplaySkippedItems(r, items, &out, false)

	assert.Equal(t, "Skipped DIR : .git [Ignored (Gitignore/Hidden Rule)]\nSkipped FILE: z.bin [Skipped (Not a Regular File)]\n", out.String())
	assert.Equal(t, "z.bin", items[0].Path, "input is not reordered")
	assert.Equal(t, "--- Skipped Items (2) ---", r.lines[0])
}

func TestDisplayNoSkippedItems(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer
	DisplaySkippedItems(r, nil, &out, false)
	assert.Empty(t, out.String())
	assert.Contains(t, r.lines, "No items were skipped.")
}

func TestWriteStats(t *testing.T) {
	root := tree.NewRoot("demo")
	root.AddPath("main.go", false).Size = 2048

	var out bytes.Buffer
	WriteStats(&out, root, tree.Stats{Total: 1, Included: 1, Tokens: 7}, "estimate")
	assert.Contains(t, out.String(), "Project:   demo\n")
	assert.Contains(t, out.String(), "Language:  Go\n")
	assert.Contains(t, out.String(), "Size:      2.0 KB\n")
	assert.Contains(t, out.String(), "Tokens:    ~7 (estimate)\n")
}
