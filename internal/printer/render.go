package printer

import (
	"fmt"
	"strings"

	"github.com/bethropolis/repoprompt/internal/tree"
)

// Format selects a bundle flavor
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists every supported format
var Formats = []Format{FormatPlain, FormatMarkdown, FormatJSON, FormatHTML}

// ParseFormat accepts a format name or a common alias ("txt", "md")
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "txt", "text":
		return FormatPlain, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("printer: unknown format %q", s)
}

const ruleWidth = 60

var (
	thinRule  = strings.Repeat("─", ruleWidth)
	thickRule = strings.Repeat("═", ruleWidth)
)

// Structure renders the included part of the tree as box-drawing lines.
// The first line is the root; an excluded root renders nothing.
func Structure(root *tree.Node) []string {
	if root == nil || !root.Included {
		return nil
	}
	lines := []string{fmt.Sprintf("📁 %s/", root.Name)}
	return structure(root, "", lines)
}

func structure(n *tree.Node, prefix string, lines []string) []string {
	var children []*tree.Node
	for _, c := range n.Sorted() {
		if c.Included {
			children = append(children, c)
		}
	}

	for i, c := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		if c.IsDir() {
			lines = append(lines, fmt.Sprintf("%s%s📁 %s/", prefix, connector, c.Name))
			lines = structure(c, prefix+indent, lines)
		} else {
			lines = append(lines, fmt.Sprintf("%s%s📄 %s", prefix, connector, c.Name))
		}
	}
	return lines
}

// Contents returns one block per included file with non-empty content, in
// display order. Excluded directories are not descended into. Only the plain
// and markdown formats produce blocks; any other format is treated as plain.
func Contents(root *tree.Node, format Format) []string {
	var blocks []string
	tree.Walk(root, func(n *tree.Node, _ int) bool {
		if !n.Included {
			return false
		}
		if n.IsDir() || n.Content == "" {
			return true
		}
		if format == FormatMarkdown {
			blocks = append(blocks, markdownBlock(n))
		} else {
			blocks = append(blocks, plainBlock(n))
		}
		return true
	})
	return blocks
}

func plainBlock(n *tree.Node) string {
	return fmt.Sprintf("\n%s\n📄 %s\n%s\n%s\n", thinRule, n.RelPath(), thinRule, n.Content)
}

func markdownBlock(n *tree.Node) string {
	lang := n.Ext()
	if lang == "" {
		lang = "txt"
	}
	fence := Fence(n.Content)
	return fmt.Sprintf("\n### `%s`\n\n%s%s\n%s\n%s\n", n.RelPath(), fence, lang, n.Content, fence)
}

// Fence returns a backtick fence longer than any backtick run in content
func Fence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
