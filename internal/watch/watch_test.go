package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func TestDirectoryChangesAreDebounced(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte{byte('a' + i)}, 0644))
	}

	select {
	case <-w.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signal")
	}

	select {
	case <-w.Changes():
		t.Fatal("burst produced more than one signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewSubdirectoriesAreWatched(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	<-w.Changes()

	// give the watcher a moment to register the new directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "x.go"), []byte("package x"), 0644))

	select {
	case <-w.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signal for nested file")
	}
}

func TestSkippedDirectoriesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	w, err := New(dir, WithDebounce(20*time.Millisecond), WithSkip(func(rel string, _ bool) bool { return rel == ".git" || strings.HasPrefix(rel, ".git/") }))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "index"), []byte("x"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("change inside skipped directory was reported")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project.zip")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	w, err := New(target, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	select {
	case <-w.Changes():
		t.Fatal("sibling change was reported")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))
	select {
	case <-w.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signal for watched file")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rebuilt := make(chan struct{}, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- w.Run(ctx, func(context.Context) error {
			rebuilt <- struct{}{}
			cancel()
			return nil
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0644))

	select {
	case <-rebuilt:
	case <-time.After(waitFor):
		t.Fatal("rebuild not called")
	}
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestNewMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestSkippedFilesInRootAreIgnored(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(20*time.Millisecond), WithSkip(func(rel string, isDir bool) bool {
		return rel == "bundle.txt" && !isDir
	}))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bundle.txt"), []byte("out"), 0644))
	select {
	case <-w.Changes():
		t.Fatal("skipped file change was reported")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestAddFileOutsideRoot(t *testing.T) {
	src := t.TempDir()
	other := t.TempDir()
	stateFile := filepath.Join(other, "state.yaml")
	require.NoError(t, os.WriteFile(stateFile, []byte("deny: []"), 0644))

	w, err := New(src, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.AddFile(stateFile))

	require.NoError(t, os.WriteFile(filepath.Join(other, "unrelated"), []byte("x"), 0644))
	select {
	case <-w.Changes():
		t.Fatal("unrelated sibling change was reported")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(stateFile, []byte("deny: [a]"), 0644))
	select {
	case <-w.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signal for added file")
	}
}

func TestDotDotNamesInRootAreReported(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "..env.bak"), []byte("x"), 0644))
	select {
	case <-w.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signal for a name starting with two dots")
	}
}
