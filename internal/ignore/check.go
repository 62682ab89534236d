package ignore

import (
	"path/filepath"
	"strings"
)

// ShouldIgnore reports whether the entry at relativePath (relative to the
// matcher root) should be pruned.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil || m.disabled {
		return false
	}
	if relativePath == "" || relativePath == "." {
		return false
	}
	unixPath := filepath.ToSlash(relativePath)

	if m.ignoreHidden && isHidden(unixPath) {
		m.logger.Debug("ignore.ShouldIgnore: %q (hidden rule)", unixPath)
		return true
	}

	if m.ignoreGit && isPathInGitDir(unixPath, isDir) {
		m.logger.Debug("ignore.ShouldIgnore: %q (.git rule)", unixPath)
		return true
	}

	if m.repoIgnore == nil {
		return false
	}

	ignored := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("PANIC recovered in gitignore library for path %q: %v", unixPath, r)
				ignored = false
			}
		}()
		match := m.repoIgnore.Absolute(filepath.Join(m.rootDir, relativePath), isDir)
		ignored = match != nil && match.Ignore()
	}()

	if ignored {
		m.logger.Debug("ignore.ShouldIgnore: %q (gitignore rule)", unixPath)
	}
	return ignored
}

// IsIgnored is a nil-safe wrapper around ShouldIgnore
func IsIgnored(matcher *IgnoreMatcher, path string, isDir bool) bool {
	if matcher == nil {
		return false
	}
	return matcher.ShouldIgnore(path, isDir)
}

func isHidden(unixPath string) bool {
	for _, part := range strings.Split(unixPath, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// isPathInGitDir checks if a path is, or is inside, a .git directory
func isPathInGitDir(unixPath string, isDir bool) bool {
	parts := strings.Split(unixPath, "/")
	for i, part := range parts {
		if part == ".git" && (isDir || i < len(parts)-1) {
			return true
		}
	}
	return false
}
