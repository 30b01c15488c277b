package watcher

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Coordinator feeds debounced change batches from a FileWatcher to a
// ChangeHandler, one batch at a time. The watcher is paused while the handler
// runs; changes that arrive meanwhile form the next batch.
type Coordinator struct {
	files   FileWatcher
	handler ChangeHandler
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]bool
	ready   chan struct{}
}

// NewCoordinator creates a coordinator. A nil logger disables logging.
func NewCoordinator(files FileWatcher, handler ChangeHandler, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		files:   files,
		handler: handler,
		logger:  logger,
		pending: make(map[string]bool),
		ready:   make(chan struct{}, 1),
	}
}

// Run starts the watcher and blocks until ctx is cancelled. The watcher is
// stopped before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.files.Start(ctx, c.enqueue); err != nil {
		c.stop()
		return err
	}
	defer c.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ready:
			c.handle(ctx)
		}
	}
}

// enqueue is the watcher callback. It never blocks.
func (c *Coordinator) enqueue(files []string) {
	c.mu.Lock()
	for _, f := range files {
		c.pending[f] = true
	}
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *Coordinator) handle(ctx context.Context) {
	c.mu.Lock()
	changed := make([]string, 0, len(c.pending))
	for f := range c.pending {
		changed = append(changed, f)
	}
	c.pending = make(map[string]bool)
	c.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	c.files.Pause()
	defer c.files.Resume()

	c.logger.Debug("processing changes", zap.Int("files", len(changed)))
	if err := c.handler(ctx, changed); err != nil {
		c.logger.Error("change handler failed", zap.Error(err))
	}
}

func (c *Coordinator) stop() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", zap.Error(err))
	}
}
