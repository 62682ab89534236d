// Package ignore decides which on-disk entries a directory source prunes
// before they reach the tree.
//
// It covers the repository's .gitignore files, the .git directory and,
// optionally, hidden entries. Pattern lists of the filter engine are applied
// later and never consulted here.
package ignore

import (
	gitignore "github.com/denormal/go-gitignore"

	"github.com/bethropolis/repoprompt/internal/utils"
)

// IgnoreMatcher determines whether a file or directory should be pruned
type IgnoreMatcher struct {
	repoIgnore gitignore.GitIgnore

	rootDir      string
	ignoreHidden bool
	ignoreGit    bool
	useGitignore bool
	logger       utils.Logger
	disabled     bool
}

// Config holds configuration options for the ignore matcher
type Config struct {
	RootDir      string
	IgnoreHidden bool
	IgnoreGit    bool
	UseGitignore bool
	Logger       utils.Logger
	Disabled     bool
}
