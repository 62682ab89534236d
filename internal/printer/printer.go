// Package printer renders a filtered project tree: the structure listing,
// the file blocks, and complete bundles in plain, markdown, JSON and HTML.
package printer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bethropolis/repoprompt/internal/tree"
)

const timeLayout = "2006-01-02 15:04:05"

// Printer writes bundles to the configured output destination
type Printer struct {
	output    io.Writer
	count     atomic.Int64
	useColors bool
	format    Format
	base64    bool
	now       func() time.Time
	counter   tree.TokenCounter
	markdown  goldmark.Markdown
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output:    os.Stdout,
		useColors: true,
		format:    FormatPlain,
		now:       time.Now,
		counter:   tree.Estimator{},
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored structure output
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithFormat sets the bundle format
func (p *Printer) WithFormat(f Format) *Printer {
	p.format = f
	return p
}

// WithBase64 encodes file content in JSON bundles
func (p *Printer) WithBase64(enabled bool) *Printer {
	p.base64 = enabled
	return p
}

// WithClock sets the source of the generation timestamp
func (p *Printer) WithClock(now func() time.Time) *Printer {
	if now != nil {
		p.now = now
	}
	return p
}

// WithCounter sets the token counter used for bundle statistics
func (p *Printer) WithCounter(c tree.TokenCounter) *Printer {
	if c != nil {
		p.counter = c
	}
	return p
}

// Format returns the configured bundle format
func (p *Printer) Format() Format {
	return p.format
}

// GetCount returns the number of file blocks written so far
func (p *Printer) GetCount() int64 {
	return p.count.Load()
}

// PrintBundle renders root in the configured format and writes it out
func (p *Printer) PrintBundle(root *tree.Node) error {
	out, err := p.Render(root)
	if err != nil {
		return err
	}
	_, err = io.WriteString(p.output, out)
	return err
}

// Render returns the bundle for root in the configured format
func (p *Printer) Render(root *tree.Node) (string, error) {
	if root == nil {
		return "", fmt.Errorf("printer: nil tree")
	}
	stats := tree.Collect(root, p.counter)

	switch p.format {
	case FormatPlain, "":
		return p.plain(root, stats), nil
	case FormatMarkdown:
		return p.markdownBundle(root, stats), nil
	case FormatJSON:
		return p.renderJSON(root, stats)
	case FormatHTML:
		return p.renderHTML(root, stats)
	}
	return "", fmt.Errorf("printer: unknown format %q", p.format)
}

// PrintStructure writes the structure listing, coloring directories when enabled
func (p *Printer) PrintStructure(root *tree.Node) {
	dir := color.New(color.FgCyan, color.Bold)
	if !p.useColors {
		dir.DisableColor()
	}
	for _, line := range Structure(root) {
		if strings.HasSuffix(line, "/") {
			fmt.Fprintln(p.output, dir.Sprint(line))
		} else {
			fmt.Fprintln(p.output, line)
		}
	}
}

func (p *Printer) plain(root *tree.Node, stats tree.Stats) string {
	var b strings.Builder

	b.WriteString("╔" + thickRule + "╗\n")
	b.WriteString(boxLine("Project: " + root.Name))
	b.WriteString(boxLine("Generated by RepoPrompt"))
	b.WriteString(boxLine(p.now().Format(timeLayout)))
	b.WriteString("╠" + thickRule + "╣\n")
	b.WriteString(boxLine(fmt.Sprintf("Files: %d/%d", stats.Included, stats.Total)))
	b.WriteString(boxLine(fmt.Sprintf("Estimated tokens: ~%s", thousands(stats.Tokens))))
	b.WriteString("╚" + thickRule + "╝\n\n")

	b.WriteString("📂 PROJECT STRUCTURE\n")
	b.WriteString(thickRule + "\n\n")
	b.WriteString(strings.Join(Structure(root), "\n") + "\n\n")

	b.WriteString("\n📝 FILE CONTENTS\n")
	b.WriteString(thickRule + "\n")
	for _, block := range Contents(root, FormatPlain) {
		b.WriteString(block)
		p.count.Add(1)
	}

	b.WriteString("\n\n" + thickRule + "\n")
	b.WriteString("End of " + root.Name + "\n")
	b.WriteString(thickRule + "\n")
	return b.String()
}

func (p *Printer) markdownBundle(root *tree.Node, stats tree.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 📦 %s\n\n", root.Name)
	fmt.Fprintf(&b, "> Generated by RepoPrompt | %s\n", p.now().Format(timeLayout))
	fmt.Fprintf(&b, "> Files: %d/%d | ~%s tokens\n\n", stats.Included, stats.Total, thousands(stats.Tokens))

	b.WriteString("## 📂 Project Structure\n\n")
	b.WriteString("```\n")
	b.WriteString(strings.Join(Structure(root), "\n") + "\n")
	b.WriteString("```\n\n")

	b.WriteString("## 📝 Files\n")
	for _, block := range Contents(root, FormatMarkdown) {
		b.WriteString(block)
		p.count.Add(1)
	}

	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "*End of %s*\n", root.Name)
	return b.String()
}

// JSONFileEntry represents a file entry in JSON output
type JSONFileEntry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Tokens   int    `json:"tokens"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content"`
}

// JSONBundle is the document written by the JSON format
type JSONBundle struct {
	Project     string          `json:"project"`
	GeneratedAt time.Time       `json:"generated_at"`
	Stats       tree.Stats      `json:"stats"`
	Structure   []string        `json:"structure"`
	Files       []JSONFileEntry `json:"files"`
}

func (p *Printer) renderJSON(root *tree.Node, stats tree.Stats) (string, error) {
	doc := JSONBundle{
		Project:     root.Name,
		GeneratedAt: p.now(),
		Stats:       stats,
		Structure:   Structure(root),
		Files:       []JSONFileEntry{},
	}

	tree.Walk(root, func(n *tree.Node, _ int) bool {
		if !n.Included {
			return false
		}
		if n.IsDir() || n.Content == "" {
			return true
		}
		entry := JSONFileEntry{
			Path:    n.RelPath(),
			Size:    n.Size,
			Tokens:  p.counter.Count(n.Content),
			Content: n.Content,
		}
		if p.base64 {
			entry.Encoding = "base64"
			entry.Content = base64.StdEncoding.EncodeToString([]byte(n.Content))
		}
		doc.Files = append(doc.Files, entry)
		p.count.Add(1)
		return true
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("printer: marshal bundle: %w", err)
	}
	return string(data) + "\n", nil
}

func (p *Printer) renderHTML(root *tree.Node, stats tree.Stats) (string, error) {
	var body bytes.Buffer
	if err := p.markdown.Convert([]byte(p.markdownBundle(root, stats)), &body); err != nil {
		return "", fmt.Errorf("printer: render html: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(root.Name))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// boxLine pads text inside the plain header box
func boxLine(text string) string {
	line := "║  " + text
	if pad := ruleWidth + 1 - utf8.RuneCountInString(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line + "║\n"
}

// thousands formats n with comma group separators
func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
