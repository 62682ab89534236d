package walker

import (
	"context"

	"github.com/bethropolis/repoprompt/internal/content"
	"github.com/bethropolis/repoprompt/internal/utils"
)

// WalkOptions configures the behavior of the Walk function
type WalkOptions struct {
	Logger           utils.Logger
	Concurrent       bool
	MaxWorkers       int
	MaxFileSize      int64
	BinaryExtensions content.Extensions
	Context          context.Context
	ProgressFn       ProgressCallback
}

// ProgressCallback is a function that receives progress updates
type ProgressCallback func(stats ProgressStats)

// ProgressStats holds statistics about the walk progress
type ProgressStats struct {
	TotalFiles      int64  // Total files seen
	ProcessedFiles  int64  // Files added to the tree
	SkippedFiles    int64  // Files that were pruned for any reason
	TotalDirs       int64  // Total directories seen
	SkippedDirs     int64  // Directories that were pruned
	CurrentFilePath string // Path of the file being read (relative)
}

func defaultOptions() WalkOptions {
	return WalkOptions{
		Logger:           utils.NoopLogger{},
		Concurrent:       false,
		MaxWorkers:       10,
		MaxFileSize:      content.DefaultMaxFileSize,
		BinaryExtensions: content.NewExtensions(),
		Context:          context.Background(),
	}
}

// Option is a functional option for configuring WalkOptions
type Option func(*WalkOptions)

// WithLogger sets a custom logger for the walker
func WithLogger(logger utils.Logger) Option {
	return func(opts *WalkOptions) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithConcurrency enables or disables concurrent file reading
func WithConcurrency(enabled bool) Option {
	return func(opts *WalkOptions) {
		opts.Concurrent = enabled
	}
}

// WithMaxWorkers sets the maximum number of concurrent workers
func WithMaxWorkers(workers int) Option {
	return func(opts *WalkOptions) {
		if workers > 0 {
			opts.MaxWorkers = workers
		}
	}
}

// WithMaxFileSize sets the size ceiling in bytes above which a file gets
// a placeholder; zero or less keeps the default
func WithMaxFileSize(maxBytes int64) Option {
	return func(opts *WalkOptions) {
		if maxBytes > 0 {
			opts.MaxFileSize = maxBytes
		}
	}
}

// WithBinaryExtensions adds extensions to the set whose content is never read
func WithBinaryExtensions(exts ...string) Option {
	return func(opts *WalkOptions) {
		opts.BinaryExtensions.Add(exts...)
	}
}

// WithContext sets the context for cancellation
func WithContext(ctx context.Context) Option {
	return func(opts *WalkOptions) {
		if ctx != nil {
			opts.Context = ctx
		}
	}
}

// WithProgress adds a progress callback function
func WithProgress(fn ProgressCallback) Option {
	return func(o *WalkOptions) {
		o.ProgressFn = fn
	}
}
