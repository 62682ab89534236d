// Package walker builds a project tree from a directory on disk
package walker

import "github.com/bethropolis/repoprompt/internal/tree"

// Reasons reported for entries that do not make it into the tree
const (
	ReasonIgnoredRule       = "Ignored (Gitignore/Hidden Rule)"
	ReasonSkippedNotRegular = "Skipped (Not a Regular File)"
	ReasonSkippedPermError  = "Skipped (Permission Error)"
	ReasonSkippedWalkError  = "Skipped (Walk Error)"
	ReasonSkippedPathError  = "Skipped (Path Calculation Error)"
)

// job is one file whose content a worker fills in
type job struct {
	path         string
	relativePath string
	node         *tree.Node
}
