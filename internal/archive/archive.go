// Package archive decodes a ZIP archive into a project tree.
//
// Text files carry their decoded content. Binary, oversized and unreadable
// files carry a one-line placeholder instead, so later stages treat every
// file uniformly.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/bethropolis/repoprompt/internal/content"
	"github.com/bethropolis/repoprompt/internal/tree"
)

// Reasons reported for entries that do not make it into the tree
const (
	ReasonMacMetadata = "Skipped (macOS Metadata)"
	ReasonUnsafePath  = "Skipped (Unsafe Path)"
	ReasonGitignore   = "Ignored (Gitignore Rule)"
)

const macMetadataDir = "__MACOSX"

// Load opens the ZIP file at path and decodes it
func Load(path string, opts ...Option) (*tree.Node, []tree.Skipped, error) {
	zr, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer zr.Close()

	return decode(&zr.Reader, filepath.Base(path), opts...)
}

// Read decodes a ZIP archive from r. name is the archive file name and is
// used as the project name when the archive has no single top-level folder.
func Read(r io.ReaderAt, size int64, name string, opts ...Option) (*tree.Node, []tree.Skipped, error) {
	// insecure names are tolerated here and skipped per entry in decode
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, nil, fmt.Errorf("archive: read %s: %w", name, err)
	}
	return decode(zr, name, opts...)
}

func decode(zr *zip.Reader, archiveName string, opts ...Option) (*tree.Node, []tree.Skipped, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := options.Logger

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	common := commonRoot(names)

	project := common
	if project == "" {
		project = strings.TrimSuffix(archiveName, filepath.Ext(archiveName))
	}
	log.Debug("archive: %d entries, project %q (common root %q)", len(zr.File), project, common)

	root := tree.NewRoot(project)
	tracker := tree.NewSkipTracker(16)

	type entry struct {
		file *zip.File
		rel  string
	}
	entries := make([]entry, 0, len(zr.File))
	var ignoreFile *zip.File

	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if name == "" {
			continue
		}
		if name == macMetadataDir+"/" || strings.HasPrefix(name, macMetadataDir+"/") {
			tracker.Track(name, ReasonMacMetadata, f.FileInfo().IsDir())
			continue
		}

		rel := strings.Trim(name, "/")
		if common != "" {
			if rel == common {
				continue
			}
			rel = strings.TrimPrefix(rel, common+"/")
		}
		if rel == "" {
			continue
		}
		if unsafePath(rel) {
			log.Warn("archive: skipping unsafe entry %q", f.Name)
			tracker.Track(rel, ReasonUnsafePath, f.FileInfo().IsDir())
			continue
		}

		if rel == ".gitignore" && !f.FileInfo().IsDir() {
			ignoreFile = f
		}
		entries = append(entries, entry{file: f, rel: rel})
	}

	var ignore *gitignore.GitIgnore
	if options.RespectGitignore && ignoreFile != nil {
		data, err := readAll(ignoreFile, options.MaxFileSize)
		if err != nil {
			log.Warn("archive: cannot read .gitignore: %v", err)
		} else {
			ignore = gitignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
			log.Debug("archive: using root .gitignore")
		}
	}

	for _, e := range entries {
		isDir := e.file.FileInfo().IsDir()
		if ignore != nil && ignored(ignore, e.rel, isDir) {
			tracker.Track(e.rel, ReasonGitignore, isDir)
			continue
		}

		node := root.AddPath(e.rel, isDir)
		if isDir {
			continue
		}
		node.Size = int64(e.file.UncompressedSize64)
		node.Content = decodeFile(e.file, node.Name, options)
	}

	tree.Sort(root)
	return root, tracker.Items(), nil
}

// ignored checks rel and each of its parent directories against the rules
func ignored(ig *gitignore.GitIgnore, rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i <= len(parts); i++ {
		p := strings.Join(parts[:i], "/")
		if i < len(parts) || isDir {
			p += "/"
		}
		if ig.MatchesPath(p) {
			return true
		}
	}
	return false
}

// decodeFile returns the decoded text of f or a placeholder
func decodeFile(f *zip.File, name string, o Options) string {
	if o.BinaryExtensions.Match(name) {
		return content.Binary(name)
	}
	if size := int64(f.UncompressedSize64); size > o.MaxFileSize {
		return content.TooLarge(size)
	}

	data, err := readAll(f, o.MaxFileSize)
	if err != nil {
		o.Logger.Warn("archive: read %s: %v", f.Name, err)
		return content.ReadError(name)
	}
	return content.Decode(name, data, o.MaxFileSize)
}

func readAll(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit+1))
}

// commonRoot returns the single top-level folder shared by every entry,
// ignoring macOS metadata and dot-entries, or "" when there is none.
func commonRoot(names []string) string {
	root := ""
	for _, n := range names {
		n = strings.ReplaceAll(n, `\`, "/")
		if n == "" || strings.HasPrefix(n, macMetadataDir) || strings.HasPrefix(n, ".") {
			continue
		}
		i := strings.IndexByte(n, '/')
		if i <= 0 {
			// a top-level file means there is no wrapping folder
			return ""
		}
		if root == "" {
			root = n[:i]
		} else if n[:i] != root {
			return ""
		}
	}
	return root
}

func unsafePath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
