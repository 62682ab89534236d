// Package app wires configuration, sources, the filter engine and the
// printer into the operations exposed on the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/bethropolis/repoprompt/internal/config"
	"github.com/bethropolis/repoprompt/internal/filter"
	"github.com/bethropolis/repoprompt/internal/history"
	"github.com/bethropolis/repoprompt/internal/ignore"
	"github.com/bethropolis/repoprompt/internal/logger"
	"github.com/bethropolis/repoprompt/internal/patterns"
	"github.com/bethropolis/repoprompt/internal/printer"
	"github.com/bethropolis/repoprompt/internal/setup"
	"github.com/bethropolis/repoprompt/internal/state"
	"github.com/bethropolis/repoprompt/internal/summary"
	"github.com/bethropolis/repoprompt/internal/tokens"
	"github.com/bethropolis/repoprompt/internal/tree"
	"github.com/bethropolis/repoprompt/internal/watch"
)

// App encapsulates the main application functionality
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	engine  *filter.Engine
	counter tree.TokenCounter
	Output  io.Writer
	ErrOut  io.Writer

	// copy is the clipboard writer; replaced in tests
	copy func(string) error
	now  func() time.Time
}

// New creates an App writing results to out and diagnostics to errOut
func New(cfg *config.Config, out, errOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	color.NoColor = !cfg.UseColors

	log := logger.New(errOut, cfg.Verbose, cfg.UseColors)
	if cfg.Verbose {
		log.SetLevel("debug")
	} else if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	if cfg.Quiet {
		log.WithLevel(logger.LevelWarn)
	}

	counter, err := tokens.NewCounter(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	catalog := filter.DefaultDeny
	if len(cfg.Defaults) > 0 {
		catalog = cfg.Defaults
	}
	catalog = append(append([]string(nil), catalog...), cfg.ExtraDefaults...)

	return &App{
		cfg:     cfg,
		log:     log,
		engine:  filter.New(filter.WithDefaults(catalog), filter.WithLogger(log)),
		counter: counter,
		Output:  out,
		ErrOut:  errOut,
		copy:    clipboard.WriteAll,
		now:     time.Now,
	}, nil
}

// Logger returns the application logger
func (a *App) Logger() *logger.Logger {
	return a.log
}

// Engine returns the filter engine built from the configured catalog
func (a *App) Engine() *filter.Engine {
	return a.engine
}

func (a *App) infoLog(format string, args ...interface{}) {
	if !a.cfg.Quiet {
		a.log.Info(format, args...)
	}
}

// Selection holds per-invocation patterns layered over the stored lists
type Selection struct {
	Deny  []string
	Allow []string
}

// StatePath returns the configured or default state file path
func (a *App) StatePath() (string, error) {
	if a.cfg.StatePath != "" {
		return a.cfg.StatePath, nil
	}
	return state.DefaultPath()
}

// State opens the pattern list store
func (a *App) State() (*state.Store, error) {
	path, err := a.StatePath()
	if err != nil {
		return nil, err
	}
	return state.New(path), nil
}

// History opens the history database
func (a *App) History() (*history.Store, error) {
	path := a.cfg.HistoryPath
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.NewStore(path)
}

// lists returns the stored lists with sel layered on top. Flag patterns go
// through the same mutual exclusion as stored ones, so a flag wins over the
// stored list it contradicts.
func (a *App) lists(sel Selection) (*patterns.Lists, error) {
	store, err := a.State()
	if err != nil {
		return nil, err
	}
	lists, err := store.Load()
	if err != nil {
		return nil, err
	}
	for _, p := range sel.Deny {
		lists.AddDeny(p)
	}
	for _, p := range sel.Allow {
		lists.AddAllow(p)
	}
	return lists, nil
}

func (a *App) sourceConfig(path string) setup.SourceConfig {
	return setup.SourceConfig{
		Path:             path,
		Concurrent:       a.cfg.Concurrent,
		MaxWorkers:       a.cfg.MaxWorkers,
		MaxFileSizeMB:    a.cfg.MaxFileSizeMB,
		BinaryExtensions: a.cfg.BinaryExtensions,
		IgnoreHidden:     a.cfg.IgnoreHidden,
		IgnoreGit:        a.cfg.IgnoreGit,
		UseGitignore:     a.cfg.UseGitignore,
		ShowProgress:     a.cfg.ShowProgress,
		Quiet:            a.cfg.Quiet,
		Progress:         a.ErrOut,
		Logger:           a.log,
	}
}

// Project is a loaded source with its filter flags applied
type Project struct {
	Root    *tree.Node
	Skipped []tree.Skipped
	Lists   *patterns.Lists
	Stats   tree.Stats
}

// Load reads the source at path and annotates it with the effective lists
func (a *App) Load(ctx context.Context, path string, sel Selection) (*Project, error) {
	root, skipped, err := setup.Load(ctx, a.sourceConfig(path), a.infoLog)
	if err != nil {
		return nil, err
	}
	lists, err := a.lists(sel)
	if err != nil {
		return nil, err
	}

	a.log.Debug("Deny list: %v", lists.Deny.Items())
	a.log.Debug("Allow list: %v", lists.Allow.Items())
	a.engine.Annotate(root, lists.Deny.Items(), lists.Allow.Items())

	return &Project{
		Root:    root,
		Skipped: skipped,
		Lists:   lists,
		Stats:   tree.Collect(root, a.counter),
	}, nil
}

// context applies the configured timeout to parent
func (a *App) context(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(parent, a.cfg.Timeout)
	}
	return context.WithCancel(parent)
}

// BundleOptions controls one bundle run
type BundleOptions struct {
	Path      string
	Selection Selection
	Watch     bool
	NoHistory bool
}

// Bundle renders the project at opts.Path and writes it to the output file,
// the clipboard or Output. With Watch it keeps rebuilding on every change
// until ctx ends.
func (a *App) Bundle(ctx context.Context, opts BundleOptions) error {
	if err := a.bundleOnce(ctx, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	err := a.watch(ctx, opts.Path, func(ctx context.Context) error {
		return a.bundleOnce(ctx, BundleOptions{Path: opts.Path, Selection: opts.Selection, NoHistory: true})
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) bundleOnce(parent context.Context, opts BundleOptions) error {
	start := a.now()
	ctx, cancel := a.context(parent)
	defer cancel()

	project, err := a.Load(ctx, opts.Path, opts.Selection)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timeout of %v reached: %w", a.cfg.Timeout, err)
		}
		return err
	}

	format, err := printer.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	p := printer.New().WithFormat(format).WithCounter(a.counter).WithClock(a.now).WithBase64(a.cfg.Base64)
	out, err := p.Render(project.Root)
	if err != nil {
		return err
	}

	if err := a.deliver(out); err != nil {
		return err
	}
	a.log.Debug("Wrote %d file blocks", p.GetCount())

	if a.cfg.History && !opts.NoHistory {
		a.record(ctx, opts.Path, project, format)
	}
	if a.cfg.ShowSkipped {
		summary.DisplaySkippedItems(a.log, project.Skipped, a.ErrOut, a.cfg.Quiet)
	}
	summary.DisplayResults(a.log, project.Stats, a.now().Sub(start), a.cfg.Quiet)
	return nil
}

// deliver writes the rendered bundle to every requested destination
func (a *App) deliver(out string) error {
	wrote := false
	if a.cfg.OutputFile != "" {
		if err := os.WriteFile(a.cfg.OutputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		a.infoLog("Bundle written to %s", a.cfg.OutputFile)
		wrote = true
	}
	if a.cfg.Clipboard {
		if err := a.copy(out); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		a.infoLog("Bundle copied to clipboard (%d bytes)", len(out))
		wrote = true
	}
	if !wrote {
		if _, err := io.WriteString(a.Output, out); err != nil {
			return err
		}
	}
	return nil
}

// record adds the bundle to history. Failures are logged, never returned.
func (a *App) record(ctx context.Context, path string, project *Project, format printer.Format) {
	store, err := a.History()
	if err != nil {
		a.log.Warn("History disabled: %v", err)
		return
	}
	defer store.Close()

	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}
	entry := &history.Entry{
		Name:         project.Root.Name,
		Source:       source,
		Language:     history.DetectLanguage(project.Root),
		FilesCount:   project.Stats.Total,
		AllowedCount: project.Stats.Included,
		TokensCount:  project.Stats.Tokens,
		Size:         history.TotalSize(project.Root),
		Format:       string(format),
	}
	if err := store.Add(ctx, entry); err != nil {
		a.log.Warn("Failed to record history: %v", err)
		return
	}
	a.log.Debug("Recorded history entry %s", entry.ID)
}

// Tree prints the included structure of the project
func (a *App) Tree(ctx context.Context, path string, sel Selection) error {
	ctx, cancel := a.context(ctx)
	defer cancel()

	project, err := a.Load(ctx, path, sel)
	if err != nil {
		return err
	}
	printer.New().WithOutput(a.Output).WithColors(a.cfg.UseColors).PrintStructure(project.Root)
	return nil
}

// Stats prints project statistics
func (a *App) Stats(ctx context.Context, path string, sel Selection) error {
	ctx, cancel := a.context(ctx)
	defer cancel()

	project, err := a.Load(ctx, path, sel)
	if err != nil {
		return err
	}
	name := tokens.EstimateName
	if t, ok := a.counter.(*tokens.Tiktoken); ok {
		name = t.Name()
	}
	summary.WriteStats(a.Output, project.Root, project.Stats, name)
	return nil
}

// ErrUnknownPath is returned by Toggle when the path names no node
var ErrUnknownPath = errors.New("path not found in project")

// Toggle flips the inclusion of nodePath inside the project at path and
// persists the edited lists
func (a *App) Toggle(ctx context.Context, path, nodePath string) (filter.ToggleResult, error) {
	ctx, cancel := a.context(ctx)
	defer cancel()

	root, _, err := setup.Load(ctx, a.sourceConfig(path), a.infoLog)
	if err != nil {
		return filter.ToggleResult{}, err
	}

	target := strings.Trim(filepath.ToSlash(nodePath), "/")
	store, err := a.State()
	if err != nil {
		return filter.ToggleResult{}, err
	}

	var res filter.ToggleResult
	_, err = store.Update(func(lists *patterns.Lists) error {
		var ok bool
		res, ok = a.engine.Toggle(root, target, lists)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPath, nodePath)
		}
		return nil
	})
	if err != nil {
		return filter.ToggleResult{}, err
	}
	return res, nil
}

// watch runs rebuild whenever the source or the state file changes
func (a *App) watch(ctx context.Context, path string, rebuild func(context.Context) error) error {
	opts := []watch.Option{
		watch.WithDebounce(a.cfg.WatchDebounce),
		watch.WithLogger(a.log),
	}
	if !setup.IsArchive(path) {
		matcher, err := ignore.NewFromConfig(ignore.Config{
			RootDir:      path,
			IgnoreHidden: a.cfg.IgnoreHidden,
			IgnoreGit:    a.cfg.IgnoreGit,
			UseGitignore: a.cfg.UseGitignore,
			Logger:       a.log,
		})
		if err != nil {
			return err
		}
		opts = append(opts, watch.WithSkip(a.watchSkip(path, matcher)))
	}

	w, err := watch.New(path, opts...)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	if statePath, err := a.StatePath(); err == nil {
		if _, statErr := os.Stat(statePath); statErr == nil {
			if err := w.AddFile(statePath); err != nil {
				a.log.Warn("Not watching state file: %v", err)
			}
		}
	}

	a.infoLog("Watching %s for changes (Ctrl+C to stop)", path)
	return w.Run(ctx, rebuild)
}

// watchSkip ignores pruned entries and the bundle's own output file
func (a *App) watchSkip(root string, matcher *ignore.IgnoreMatcher) watch.SkipFunc {
	var outRel string
	if a.cfg.OutputFile != "" {
		absRoot, err1 := filepath.Abs(root)
		absOut, err2 := filepath.Abs(a.cfg.OutputFile)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absRoot, absOut); err == nil {
				outRel = filepath.ToSlash(rel)
			}
		}
	}
	return func(rel string, isDir bool) bool {
		if rel == outRel {
			return true
		}
		return matcher.ShouldIgnore(rel, isDir)
	}
}
