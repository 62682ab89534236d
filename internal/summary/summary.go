// Package summary handles display of load results and filter statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bethropolis/repoprompt/internal/history"
	"github.com/bethropolis/repoprompt/internal/tree"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
}

// DisplayResults shows the end results of a bundle operation
func DisplayResults(logger Logger, stats tree.Stats, duration time.Duration, quiet bool) {
	if quiet {
		return
	}
	logger.Info("Included %d of %d files (%d excluded), ~%d tokens.",
		stats.Included, stats.Total, stats.Excluded, stats.Tokens)
	logger.Info("Done in %v.", duration.Round(time.Millisecond))
}

// WriteStats prints a stats table for the tree
func WriteStats(w io.Writer, root *tree.Node, stats tree.Stats, counter string) {
	fmt.Fprintf(w, "Project:   %s\n", root.Name)
	fmt.Fprintf(w, "Language:  %s\n", history.DetectLanguage(root))
	fmt.Fprintf(w, "Size:      %s\n", history.FormatSize(history.TotalSize(root)))
	fmt.Fprintf(w, "Files:     %d\n", stats.Total)
	fmt.Fprintf(w, "Included:  %d\n", stats.Included)
	fmt.Fprintf(w, "Excluded:  %d\n", stats.Excluded)
	fmt.Fprintf(w, "Tokens:    ~%d (%s)\n", stats.Tokens, counter)
}

// DisplaySkippedItems formats and prints information about skipped items
func DisplaySkippedItems(logger Logger, skippedItems []tree.Skipped, output io.Writer, quiet bool) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- Skipped Items (%d) ---", len(skippedItems))
	if len(skippedItems) > 0 {
		items := make([]tree.Skipped, len(skippedItems))
		copy(items, skippedItems)
		sort.Slice(items, func(i, j int) bool {
			return items[i].Path < items[j].Path
		})
		for _, item := range items {
			typeStr := "FILE"
			if item.IsDir {
				typeStr = "DIR "
			}
			fmt.Fprintf(output, "Skipped %s: %-.*s [%s]\n", typeStr, 50, item.Path, item.Reason)
		}
	} else {
		infoLog("No items were skipped.")
	}
	infoLog("--- End Skipped Items ---")
}
