package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"

	"github.com/bethropolis/repoprompt/internal/utils"
)

// New creates and initializes an IgnoreMatcher rooted at rootDir.
// By default .git is pruned, hidden entries are kept and .gitignore
// files are honoured.
func New(rootDir string, opts ...Option) (*IgnoreMatcher, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for rootDir '%s': %w", rootDir, err)
	}

	matcher := &IgnoreMatcher{
		rootDir:      absRootDir,
		ignoreGit:    true,
		useGitignore: true,
		logger:       utils.NoopLogger{},
	}

	for _, opt := range opts {
		opt(matcher)
	}

	if !matcher.disabled {
		info, err := os.Stat(absRootDir)
		if err != nil {
			return nil, fmt.Errorf("ignore: cannot access rootDir '%s': %w", rootDir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("ignore: rootDir '%s' is not a directory", rootDir)
		}
	}

	if err := matcher.init(); err != nil {
		return nil, err
	}

	return matcher, nil
}

// NewFromConfig creates an IgnoreMatcher from a Config struct
func NewFromConfig(cfg Config) (*IgnoreMatcher, error) {
	return New(cfg.RootDir,
		WithHiddenIgnore(cfg.IgnoreHidden),
		WithGitIgnore(cfg.IgnoreGit),
		WithGitignoreFiles(cfg.UseGitignore),
		WithDisabled(cfg.Disabled),
		WithLogger(cfg.Logger),
	)
}

// CreateDisabledMatcher returns a matcher that ignores nothing
func CreateDisabledMatcher() *IgnoreMatcher {
	matcher, _ := New(".", WithDisabled(true))
	return matcher
}

func (m *IgnoreMatcher) init() error {
	m.logger.Debug("ignore.New: root=%s hidden=%v git=%v gitignore=%v",
		m.rootDir, m.ignoreHidden, m.ignoreGit, m.useGitignore)

	if m.disabled || !m.useGitignore {
		return nil
	}

	// the repository form picks up nested .gitignore files as well
	repoMatcher, err := gitignore.NewRepository(m.rootDir)
	if err != nil {
		if repoMatcher != nil {
			return fmt.Errorf("ignore: failed to load repository ignores: %w", err)
		}
		m.logger.Warn("ignore.New: no .gitignore rules loaded for '%s': %v", m.rootDir, err)
		repoMatcher = gitignore.New(strings.NewReader(""), m.rootDir, nil)
	}
	m.repoIgnore = repoMatcher
	return nil
}
