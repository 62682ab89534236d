// Package content decides what text a source stores for a file: its
// decoded content, or a one-line placeholder for binary, oversized and
// unreadable files.
package content

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultMaxFileSize is the largest file whose content is decoded (1 MiB)
const DefaultMaxFileSize int64 = 1024 * 1024

// sniffLen is how much of a file is checked for NUL bytes
const sniffLen = 8000

// DefaultBinaryExtensions lists extensions whose content is never decoded
var DefaultBinaryExtensions = []string{
	// images
	"png", "jpg", "jpeg", "gif", "webp", "svg", "ico", "bmp", "tiff",
	// fonts
	"woff", "woff2", "ttf", "otf", "eot",
	// audio / video
	"mp3", "mp4", "wav", "ogg", "webm", "avi", "mov",
	// archives
	"zip", "rar", "7z", "tar", "gz",
	// binaries
	"exe", "dll", "so", "dylib", "bin",
	// documents
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	// misc
	"lock", "map",
}

// Extensions is a set of lower-case extensions without the dot
type Extensions map[string]struct{}

// NewExtensions returns the default binary set plus extra
func NewExtensions(extra ...string) Extensions {
	e := make(Extensions, len(DefaultBinaryExtensions)+len(extra))
	e.Add(DefaultBinaryExtensions...)
	e.Add(extra...)
	return e
}

// Add normalises and inserts extensions, with or without the leading dot
func (e Extensions) Add(exts ...string) {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			e[ext] = struct{}{}
		}
	}
}

// Match reports whether the file name carries one of the extensions
func (e Extensions) Match(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, ok := e[strings.ToLower(name[i+1:])]
	return ok
}

// LooksBinary reports whether data contains a NUL byte near the start
func LooksBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// Decode returns the text stored for a file named name whose bytes are data
func Decode(name string, data []byte, maxSize int64) string {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return TooLarge(int64(len(data)))
	}
	if LooksBinary(data) {
		return Binary(name)
	}
	return string(data)
}

// Binary is the placeholder for binary files
func Binary(name string) string {
	return fmt.Sprintf("[Binary file: %s]", name)
}

// TooLarge is the placeholder for files above the size ceiling
func TooLarge(size int64) string {
	return fmt.Sprintf("[File too large: %.2f MB]", float64(size)/1024/1024)
}

// ReadError is the placeholder for files that could not be read
func ReadError(name string) string {
	return fmt.Sprintf("[Read error: %s]", name)
}

// IsPlaceholder reports whether text is one of the placeholders above
func IsPlaceholder(text string) bool {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") || strings.Contains(text, "\n") {
		return false
	}
	return strings.HasPrefix(text, "[Binary file: ") ||
		strings.HasPrefix(text, "[File too large: ") ||
		strings.HasPrefix(text, "[Read error: ")
}
