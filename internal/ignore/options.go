package ignore

import "github.com/bethropolis/repoprompt/internal/utils"

// Option configures an IgnoreMatcher
type Option func(*IgnoreMatcher)

// WithHiddenIgnore prunes entries whose name, or any parent's name, starts with a dot
func WithHiddenIgnore(ignore bool) Option {
	return func(m *IgnoreMatcher) {
		m.ignoreHidden = ignore
	}
}

// WithGitIgnore prunes the .git directory
func WithGitIgnore(ignore bool) Option {
	return func(m *IgnoreMatcher) {
		m.ignoreGit = ignore
	}
}

// WithGitignoreFiles enables the repository's .gitignore rules
func WithGitignoreFiles(enabled bool) Option {
	return func(m *IgnoreMatcher) {
		m.useGitignore = enabled
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(m *IgnoreMatcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithDisabled(disabled bool) Option {
	return func(m *IgnoreMatcher) {
		m.disabled = disabled
	}
}
