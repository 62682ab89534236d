package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/bethropolis/repoprompt/internal/tree"
)

// LanguageUnknown is reported when no known extension is present
const LanguageUnknown = "Unknown"

// languageRules is checked in order; the first language with any matching
// file wins, regardless of how many files other languages have.
var languageRules = []struct {
	language string
	exts     []string
}{
	{"TypeScript", []string{"tsx", "ts"}},
	{"JavaScript", []string{"jsx", "js"}},
	{"Python", []string{"py"}},
	{"Vue", []string{"vue"}},
	{"Java", []string{"java"}},
	{"Go", []string{"go"}},
	{"Rust", []string{"rs"}},
	{"Ruby", []string{"rb"}},
	{"PHP", []string{"php"}},
}

// DetectLanguage names the project's language from the extensions of all files
func DetectLanguage(root *tree.Node) string {
	seen := map[string]bool{}
	for _, f := range tree.Files(root) {
		seen[strings.ToLower(f.Ext())] = true
	}
	for _, rule := range languageRules {
		for _, ext := range rule.exts {
			if seen[ext] {
				return rule.language
			}
		}
	}
	return LanguageUnknown
}

// TotalSize sums the sizes of every file in the tree
func TotalSize(root *tree.Node) int64 {
	var total int64
	for _, f := range tree.Files(root) {
		total += f.Size
	}
	return total
}

// FormatSize renders a byte count as B, KB or MB with one decimal
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
}

// FormatRelative describes t relative to now
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d h ago", hours)
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Local().Format("2006-01-02")
}

// Header is the short text summary written when an entry is exported
func Header(e *Entry) string {
	return fmt.Sprintf("# %s\n# Downloaded from History\n# Files: %d\n# Tokens: ~%d\n",
		e.Name, e.FilesCount, e.TokensCount)
}
