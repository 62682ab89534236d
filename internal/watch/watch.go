// Package watch rebuilds a bundle whenever the source on disk changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bethropolis/repoprompt/internal/utils"
)

// DefaultDebounceDelay is the quiet period that coalesces bursts of events
const DefaultDebounceDelay = 300 * time.Millisecond

// SkipFunc reports whether an entry below the root is not watched
type SkipFunc func(relativePath string, isDir bool) bool

// Watcher turns file-system events below a root into debounced change signals
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	errors  chan error
	done    chan struct{}
	rootDir string
	tree    bool // rootDir is watched recursively
	skip    SkipFunc
	logger  utils.Logger

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	files         map[string]struct{}
	closed        bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period; zero or less keeps the default
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDelay = d
		}
	}
}

// WithSkip excludes directories from being watched
func WithSkip(fn SkipFunc) Option {
	return func(w *Watcher) {
		w.skip = fn
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(w *Watcher) {
		w.logger = utils.OrNoop(logger)
	}
}

// New watches path. A directory is watched recursively; a file is watched
// through its parent directory and only its own events count.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:       fsw,
		changes:       make(chan struct{}, 1),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		rootDir:       abs,
		logger:        utils.NoopLogger{},
		debounceDelay: DefaultDebounceDelay,
		files:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if info.IsDir() {
		w.tree = true
		err = w.addRecursive(abs)
	} else {
		w.rootDir = filepath.Dir(abs)
		err = w.AddFile(abs)
	}
	if err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

// AddFile watches one more file through its parent directory
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.mu.Lock()
	w.files[abs] = struct{}{}
	w.mu.Unlock()
	return nil
}

func (w *Watcher) watchesFile(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[path]
	return ok
}

// addRecursive adds the directory and all its non-skipped subdirectories
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(w.rootDir, path); relErr == nil && rel != "." && w.skip != nil && w.skip(filepath.ToSlash(rel), true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil && !os.IsPermission(err) {
			return err
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(event.Name)
	if !w.watchesFile(name) && !w.inTree(name, event) {
		return
	}

	w.logger.Debug("watch: %s %s", event.Op, name)
	w.debounce()
}

// inTree reports whether the event belongs to the recursively watched root.
// Newly created directories are added to the watch.
func (w *Watcher) inTree(name string, event fsnotify.Event) bool {
	if !w.tree {
		return false
	}
	rel, err := filepath.Rel(w.rootDir, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	isDir := false
	if info, err := os.Stat(name); err == nil {
		isDir = info.IsDir()
	}
	if w.skip != nil && w.skip(rel, isDir) {
		return false
	}

	if isDir && event.Has(fsnotify.Create) {
		if err := w.addRecursive(name); err != nil {
			select {
			case w.errors <- err:
			default:
			}
		}
	}
	return true
}

// debounce restarts the quiet-period timer
func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.changes <- struct{}{}:
		default:
			// a change is already pending
		}
	})
}

// Changes delivers one value per settled burst of events
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors returns the channel for receiving watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// Run calls rebuild for every settled change until ctx ends. Errors from
// rebuild are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-w.errors:
			w.logger.Warn("watch: %v", err)
		case <-w.changes:
			if err := rebuild(ctx); err != nil {
				w.logger.Error("watch: rebuild failed: %v", err)
			}
		}
	}
}
