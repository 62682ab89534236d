package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bethropolis/repoprompt/internal/ignore"
	"github.com/bethropolis/repoprompt/internal/tree"
)

// Walk builds the tree for rootDir. Entries the matcher rejects are pruned
// and reported as skipped; every other file becomes a node carrying its
// content or a placeholder. On cancellation the partial tree is returned
// together with the context error.
func Walk(rootDir string, matcher *ignore.IgnoreMatcher, opts ...Option) (*tree.Node, []tree.Skipped, error) {
	startTime := time.Now()

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, []tree.Skipped{{Path: rootDir, Reason: ReasonSkippedPathError, IsDir: true}},
			fmt.Errorf("walker: failed to get absolute path for '%s': %w", rootDir, err)
	}
	info, err := os.Stat(absRootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("walker: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("walker: '%s' is not a directory", rootDir)
	}

	root := tree.NewRoot(filepath.Base(absRootDir))
	tracker := tree.NewSkipTracker(100)

	var stats struct {
		totalFiles     atomic.Int64
		processedFiles atomic.Int64
		skippedFiles   atomic.Int64
		totalDirs      atomic.Int64
		skippedDirs    atomic.Int64
	}

	if options.ProgressFn != nil {
		progressCtx, progressCancel := context.WithCancel(context.Background())
		defer progressCancel()

		go func() {
			ticker := time.NewTicker(300 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-progressCtx.Done():
					return
				case <-ticker.C:
					options.ProgressFn(ProgressStats{
						TotalFiles:     stats.totalFiles.Load(),
						ProcessedFiles: stats.processedFiles.Load(),
						SkippedFiles:   stats.skippedFiles.Load(),
						TotalDirs:      stats.totalDirs.Load(),
						SkippedDirs:    stats.skippedDirs.Load(),
					})
				}
			}
		}()
	}

	options.Logger.Debug("walker.Walk started. Root: %s, Concurrent: %v, Workers: %d",
		absRootDir, options.Concurrent, options.MaxWorkers)

	skip := func(rel, reason string, isDir bool) {
		tracker.Track(rel, reason, isDir)
		if isDir {
			stats.skippedDirs.Add(1)
		} else {
			stats.skippedFiles.Add(1)
		}
	}

	// processEntry adds the entry to the tree and returns the job for files
	// whose content still has to be read
	processEntry := func(path string, d fs.DirEntry, err error) (*job, error) {
		select {
		case <-options.Context.Done():
			return nil, options.Context.Err()
		default:
		}

		isDir := d != nil && d.IsDir()
		if isDir {
			stats.totalDirs.Add(1)
		} else {
			stats.totalFiles.Add(1)
		}

		relativePath, relErr := filepath.Rel(absRootDir, path)
		if relErr != nil {
			options.Logger.Error("Walker Error: Path calculation failed for %q: %v", path, relErr)
			skip(path, ReasonSkippedPathError, isDir)
			return nil, nil
		}

		if err != nil {
			reason := ReasonSkippedWalkError
			if os.IsPermission(err) {
				reason = ReasonSkippedPermError
			}
			options.Logger.Error("Walker Error: Walk error for %q: %v", relativePath, err)
			skip(relativePath, reason, isDir)
			if isDir && relativePath != "." {
				return nil, filepath.SkipDir
			}
			return nil, nil
		}

		if path == absRootDir || relativePath == "." {
			return nil, nil
		}

		if matcher != nil && matcher.ShouldIgnore(relativePath, isDir) {
			options.Logger.Debug("Walker: Ignored %q by matcher rules", relativePath)
			skip(filepath.ToSlash(relativePath), ReasonIgnoredRule, isDir)
			if isDir {
				return nil, filepath.SkipDir
			}
			return nil, nil
		}

		slashPath := filepath.ToSlash(relativePath)
		if isDir {
			root.AddPath(slashPath, true)
			return nil, nil
		}

		if !d.Type().IsRegular() {
			options.Logger.Debug("Walker: Skipping %q: not a regular file", relativePath)
			skip(slashPath, ReasonSkippedNotRegular, false)
			return nil, nil
		}

		stats.processedFiles.Add(1)
		return &job{path: path, relativePath: slashPath, node: root.AddPath(slashPath, false)}, nil
	}

	var walkErr error
	if options.Concurrent {
		var wg sync.WaitGroup
		jobs := make(chan job, options.MaxWorkers*2)

		options.Logger.Debug("Starting %d workers for concurrent processing.", options.MaxWorkers)
		for i := 0; i < options.MaxWorkers; i++ {
			wg.Add(1)
			go fileProcessorWorker(i+1, jobs, &wg, options)
		}

		// the tree is only mutated by this goroutine; workers write the
		// content fields of distinct file nodes
		walkErr = filepath.WalkDir(absRootDir, func(path string, d fs.DirEntry, err error) error {
			j, decisionErr := processEntry(path, d, err)
			if decisionErr != nil || j == nil {
				return decisionErr
			}
			select {
			case <-options.Context.Done():
				return options.Context.Err()
			case jobs <- *j:
				return nil
			}
		})

		close(jobs)
		options.Logger.Debug("Walker: Waiting for workers to complete...")
		wg.Wait()
	} else {
		options.Logger.Debug("Walker: Starting sequential walk.")
		walkErr = filepath.WalkDir(absRootDir, func(path string, d fs.DirEntry, err error) error {
			j, decisionErr := processEntry(path, d, err)
			if decisionErr != nil || j == nil {
				return decisionErr
			}
			processFile(*j, options)
			return nil
		})
	}

	tree.Sort(root)
	options.Logger.Debug("Walker: Total walk and processing time: %s", time.Since(startTime))

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
		options.Logger.Error("Walker: Error during directory traversal: %v", walkErr)
	}
	return root, tracker.Items(), walkErr
}
