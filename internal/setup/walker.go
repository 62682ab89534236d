// Package setup turns source settings into a loaded project tree
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/repoprompt/internal/archive"
	"github.com/bethropolis/repoprompt/internal/ignore"
	"github.com/bethropolis/repoprompt/internal/tree"
	"github.com/bethropolis/repoprompt/internal/utils"
	"github.com/bethropolis/repoprompt/internal/walker"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// SourceConfig holds all parameters needed to load a project
type SourceConfig struct {
	Path             string
	Concurrent       bool
	MaxWorkers       int
	MaxFileSizeMB    float64
	BinaryExtensions []string
	IgnoreHidden     bool
	IgnoreGit        bool
	UseGitignore     bool
	ShowProgress     bool
	Quiet            bool
	Progress         io.Writer
	Logger           utils.Logger
}

// IsArchive reports whether path names a ZIP file rather than a directory
func IsArchive(path string) bool {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return false
	}
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// Load builds the tree for cfg.Path, reading a ZIP archive or walking a directory
func Load(ctx context.Context, cfg SourceConfig, infoLog InfoLogger) (*tree.Node, []tree.Skipped, error) {
	if cfg.Path == "" {
		return nil, nil, fmt.Errorf("setup: no source path given")
	}
	if IsArchive(cfg.Path) {
		infoLog("Reading archive %s", cfg.Path)
		return archive.Load(cfg.Path, ConfigureArchive(cfg)...)
	}

	matcher, opts, err := ConfigureWalker(cfg, infoLog)
	if err != nil {
		return nil, nil, err
	}
	infoLog("Walking directory %s", cfg.Path)
	opts = append(opts, walker.WithContext(ctx))
	root, skipped, err := walker.Walk(cfg.Path, matcher, opts...)
	if cfg.ShowProgress && !cfg.Quiet {
		fmt.Fprintln(progressOut(cfg))
	}
	return root, skipped, err
}

// ConfigureArchive maps cfg onto archive options
func ConfigureArchive(cfg SourceConfig) []archive.Option {
	return []archive.Option{
		archive.WithLogger(cfg.Logger),
		archive.WithMaxFileSize(megabytes(cfg.MaxFileSizeMB)),
		archive.WithBinaryExtensions(cfg.BinaryExtensions...),
		archive.WithGitignore(cfg.UseGitignore),
	}
}

// ConfigureWalker sets up an ignore matcher and walker options based on the config
func ConfigureWalker(cfg SourceConfig, infoLog InfoLogger) (*ignore.IgnoreMatcher, []walker.Option, error) {
	if cfg.IgnoreHidden {
		infoLog("Ignoring hidden files/directories (starting with '.').")
	}
	if !cfg.UseGitignore {
		infoLog(".gitignore rules disabled.")
	}

	matcher, err := ignore.NewFromConfig(ignore.Config{
		RootDir:      cfg.Path,
		IgnoreHidden: cfg.IgnoreHidden,
		IgnoreGit:    cfg.IgnoreGit,
		UseGitignore: cfg.UseGitignore,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing ignore rules: %w", err)
	}

	walkOptions := []walker.Option{
		walker.WithLogger(cfg.Logger),
		walker.WithConcurrency(cfg.Concurrent),
		walker.WithMaxWorkers(cfg.MaxWorkers),
		walker.WithBinaryExtensions(cfg.BinaryExtensions...),
	}

	if maxBytes := megabytes(cfg.MaxFileSizeMB); maxBytes > 0 {
		walkOptions = append(walkOptions, walker.WithMaxFileSize(maxBytes))
		infoLog("Files larger than %.2f MB get a placeholder.", cfg.MaxFileSizeMB)
	}

	if cfg.ShowProgress && !cfg.Quiet {
		walkOptions = append(walkOptions, walker.WithProgress(progressPrinter(progressOut(cfg))))
	}

	return matcher, walkOptions, nil
}

func progressOut(cfg SourceConfig) io.Writer {
	if cfg.Progress != nil {
		return cfg.Progress
	}
	return os.Stderr
}

// progressPrinter rewrites a single status line on w
func progressPrinter(w io.Writer) walker.ProgressCallback {
	return func(stats walker.ProgressStats) {
		var statusLine string
		if stats.CurrentFilePath != "" {
			path := stats.CurrentFilePath
			if len(path) > 40 {
				path = "..." + path[len(path)-37:]
			}
			statusLine = fmt.Sprintf("\rReading: %-40s", path)
		} else {
			statusLine = fmt.Sprintf("\rScanning... | Files: %d/%d | Dirs: %d",
				stats.ProcessedFiles,
				stats.TotalFiles,
				stats.TotalDirs)
		}
		fmt.Fprint(w, statusLine)
	}
}

func megabytes(mb float64) int64 {
	if mb <= 0 {
		return 0
	}
	return int64(mb * 1024 * 1024)
}
