package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds on a directory and fails on a missing one
// - Single lesson change fires the callback after the debounce
// - Rapid changes to several files are coalesced into one sorted batch
// - Pause accumulates events and Resume flushes them
// - Deleted and renamed lessons are reported
// - Lessons in directories created after Start are reported
// - Skipped directories (node_modules) are not watched
// - Non-lesson extensions are ignored
// - Stop is idempotent and context cancellation ends the watch loop
// - No goroutines leak across the package tests

const testDebounce = 50 * time.Millisecond

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// batchRecorder collects callback batches and signals each one.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
	fired   chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{fired: make(chan struct{}, 16)}
}

func (r *batchRecorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called before timeout")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func (r *batchRecorder) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-r.fired:
		r.mu.Lock()
		defer r.mu.Unlock()
		t.Fatalf("unexpected callback with %v", r.batches[len(r.batches)-1])
	case <-time.After(within):
	}
}

func startWatcher(t *testing.T, dir string, opts ...Option) (FileWatcher, *batchRecorder) {
	t.Helper()
	opts = append([]Option{WithDebounce(testDebounce), WithLogger(zaptest.NewLogger(t))}, opts...)
	fw, err := NewFileWatcher([]string{dir}, []string{".js", ".md"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Stop() })

	rec := newBatchRecorder()
	require.NoError(t, fw.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)
	return fw, rec
}

func writeLesson(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileWatcher(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".js"})
	require.NoError(t, err)
	require.NoError(t, fw.Stop())

	fw, err = NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing")}, []string{".js"})
	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	lessonPath := filepath.Join(dir, "01-intro.js")
	writeLesson(t, lessonPath, "// Aula 1: Intro\n")

	files := rec.wait(t)
	assert.Equal(t, []string{lessonPath}, files)
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	b := filepath.Join(dir, "02-b.js")
	a := filepath.Join(dir, "01-a.js")
	for i := 0; i < 5; i++ {
		writeLesson(t, b, strings.Repeat("x", i+1))
		writeLesson(t, a, strings.Repeat("y", i+1))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, []string{a, b}, rec.wait(t))
	rec.expectNone(t, 3*testDebounce)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, rec := startWatcher(t, dir)

	fw.Pause()
	lessonPath := filepath.Join(dir, "01-a.js")
	writeLesson(t, lessonPath, "// Aula 1\n")
	rec.expectNone(t, 4*testDebounce)

	fw.Resume()
	assert.Equal(t, []string{lessonPath}, rec.wait(t))
}

func TestFileWatcher_DeleteAndRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doomed := filepath.Join(dir, "01-a.js")
	moved := filepath.Join(dir, "02-b.js")
	writeLesson(t, doomed, "a")
	writeLesson(t, moved, "b")
	_, rec := startWatcher(t, dir)

	require.NoError(t, os.Remove(doomed))
	assert.Contains(t, rec.wait(t), doomed)

	renamed := filepath.Join(dir, "03-b.js")
	require.NoError(t, os.Rename(moved, renamed))
	files := rec.wait(t)
	assert.Contains(t, files, moved)
	assert.Contains(t, files, renamed)
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	module := filepath.Join(dir, "03-Node")
	require.NoError(t, os.Mkdir(module, 0755))
	time.Sleep(50 * time.Millisecond)

	lessonPath := filepath.Join(module, "01-express.js")
	writeLesson(t, lessonPath, "// Aula 1\n")

	assert.Eventually(t, func() bool {
		select {
		case <-rec.fired:
		default:
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, batch := range rec.batches {
			for _, f := range batch {
				if f == lessonPath {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_SkipDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "react"), 0755))
	_, rec := startWatcher(t, dir, WithSkipDir(func(path string) bool {
		return filepath.Base(path) == "node_modules"
	}))

	writeLesson(t, filepath.Join(dir, "node_modules", "react", "01-index.js"), "x")
	rec.expectNone(t, 4*testDebounce)
}

func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	writeLesson(t, filepath.Join(dir, "package.json"), "{}")
	writeLesson(t, filepath.Join(dir, "notes.txt"), "x")
	rec.expectNone(t, 4*testDebounce)

	md := filepath.Join(dir, "01-readme.md")
	writeLesson(t, md, "<!-- Aula 1 -->")
	assert.Equal(t, []string{md}, rec.wait(t))
}

func TestFileWatcher_StopAndCancel(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".js"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, fw.Start(ctx, func([]string) {}))
	cancel()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, fw.Stop())
		}()
	}
	wg.Wait()
}
