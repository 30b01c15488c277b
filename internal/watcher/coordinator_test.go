package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Test Plan for Coordinator:
// - Batches from the watcher reach the handler sorted and deduplicated
// - The watcher is paused while the handler runs and resumed afterwards
// - Handler errors are logged and do not stop the loop
// - Start failure is returned and the watcher is stopped
// - Cancelling the context stops the watcher and returns context.Canceled

type fakeWatcher struct {
	mu       sync.Mutex
	callback func([]string)
	startErr error
	paused   bool
	pauses   int
	resumes  int
	stopped  bool
}

func (f *fakeWatcher) Start(_ context.Context, callback func([]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = callback
	return f.startErr
}

func (f *fakeWatcher) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeWatcher) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	f.pauses++
}

func (f *fakeWatcher) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	f.resumes++
}

func (f *fakeWatcher) fire(files ...string) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	cb(files)
}

func (f *fakeWatcher) state() (paused bool, pauses, resumes int, stopped bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, f.pauses, f.resumes, f.stopped
}

func (f *fakeWatcher) started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callback != nil
}

func TestCoordinator_DeliversBatches(t *testing.T) {
	t.Parallel()

	fw := &fakeWatcher{}
	batches := make(chan []string, 4)
	pausedDuringHandler := make(chan bool, 4)

	c := NewCoordinator(fw, func(_ context.Context, changed []string) error {
		paused, _, _, _ := fw.state()
		pausedDuringHandler <- paused
		batches <- changed
		return nil
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, fw.started, time.Second, 5*time.Millisecond)
	fw.fire("b.js", "a.js", "b.js")

	select {
	case got := <-batches:
		assert.Equal(t, []string{"a.js", "b.js"}, got)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	assert.True(t, <-pausedDuringHandler)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	paused, pauses, resumes, stopped := fw.state()
	assert.False(t, paused)
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 1, resumes)
	assert.True(t, stopped)
}

func TestCoordinator_HandlerErrorKeepsRunning(t *testing.T) {
	t.Parallel()

	fw := &fakeWatcher{}
	calls := make(chan struct{}, 4)
	c := NewCoordinator(fw, func(context.Context, []string) error {
		calls <- struct{}{}
		return errors.New("boom")
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, fw.started, time.Second, 5*time.Millisecond)
	for i := 0; i < 2; i++ {
		fw.fire("a.js")
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("handler call %d missing", i+1)
		}
	}

	cancel()
	<-done
}

func TestCoordinator_StartError(t *testing.T) {
	t.Parallel()

	fw := &fakeWatcher{startErr: errors.New("no watcher")}
	c := NewCoordinator(fw, func(context.Context, []string) error { return nil }, nil)

	err := c.Run(context.Background())
	assert.EqualError(t, err, "no watcher")

	_, _, _, stopped := fw.state()
	assert.True(t, stopped)
}
