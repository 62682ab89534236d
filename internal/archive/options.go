package archive

import (
	"github.com/bethropolis/repoprompt/internal/content"
	"github.com/bethropolis/repoprompt/internal/utils"
)

// Options configures archive decoding
type Options struct {
	Logger           utils.Logger
	MaxFileSize      int64
	BinaryExtensions content.Extensions
	RespectGitignore bool
}

func defaultOptions() Options {
	return Options{
		Logger:           utils.NoopLogger{},
		MaxFileSize:      content.DefaultMaxFileSize,
		BinaryExtensions: content.NewExtensions(),
	}
}

// Option is a functional option for configuring Options
type Option func(*Options)

// WithLogger sets a custom logger
func WithLogger(logger utils.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMaxFileSize sets the size ceiling in bytes; zero or less keeps the default
func WithMaxFileSize(maxBytes int64) Option {
	return func(o *Options) {
		if maxBytes > 0 {
			o.MaxFileSize = maxBytes
		}
	}
}

// WithBinaryExtensions adds extensions (with or without the dot) to the binary set
func WithBinaryExtensions(exts ...string) Option {
	return func(o *Options) {
		o.BinaryExtensions.Add(exts...)
	}
}

// WithGitignore prunes entries matched by the project's root .gitignore
func WithGitignore(enabled bool) Option {
	return func(o *Options) {
		o.RespectGitignore = enabled
	}
}
