package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DepthObserver is told the queue depth whenever it changes.
type DepthObserver interface {
	QueueDepth(depth int)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDepthObserver reports queue depth changes to o.
func WithDepthObserver(o DepthObserver) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

type request struct {
	clip  Clip
	delay time.Duration
}

// Coordinator plays queued clips one at a time in submission order.
// Enqueue is safe for concurrent producers; a single worker consumes.
type Coordinator struct {
	player   Player
	logger   *slog.Logger
	observer DepthObserver

	mu     sync.Mutex
	queue  []request
	busy   bool
	closed bool
	wake   chan struct{}
	idle   chan struct{} // closed while nothing is queued or playing

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator starts the worker. Call Close to stop it.
func NewCoordinator(player Player, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		player: player,
		logger: slog.Default(),
		wake:   make(chan struct{}, 1),
		idle:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "audio.coordinator")
	close(c.idle)

	go c.run()
	return c
}

// Enqueue adds clip to the queue and returns immediately. The worker
// waits delay before playing it.
func (c *Coordinator) Enqueue(clip Clip, delay time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if len(c.queue) == 0 && !c.busy {
		c.idle = make(chan struct{})
	}
	c.queue = append(c.queue, request{clip: clip, delay: delay})
	depth := len(c.queue)
	c.mu.Unlock()

	c.reportDepth(depth)

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of queued clips, including the one playing.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.queue)
	if c.busy {
		n++
	}
	return n
}

// WaitUntilIdle blocks until every enqueued clip has finished playing.
// It returns true once drained, including when nothing was queued, and
// false if ctx ends or the coordinator is closed first.
func (c *Coordinator) WaitUntilIdle(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

// Close stops the worker. The clip playing is cancelled and queued clips
// are dropped.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	dropped := len(c.queue)
	c.queue = nil
	c.mu.Unlock()

	c.cancel()
	<-c.done

	if dropped > 0 {
		c.logger.Debug("dropped queued clips", "count", dropped)
	}
	c.reportDepth(0)
	return nil
}

func (c *Coordinator) run() {
	defer close(c.done)

	for {
		req, ok := c.next()
		if !ok {
			select {
			case <-c.ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}

		c.play(req)
		if c.ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		c.busy = false
		if len(c.queue) == 0 {
			close(c.idle)
		}
		c.mu.Unlock()
	}
}

// next pops the head of the queue and marks the worker busy.
func (c *Coordinator) next() (request, bool) {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return request{}, false
	}
	req := c.queue[0]
	c.queue[0] = request{}
	c.queue = c.queue[1:]
	c.busy = true
	depth := len(c.queue)
	c.mu.Unlock()

	c.reportDepth(depth)
	return req, true
}

func (c *Coordinator) play(req request) {
	if req.delay > 0 {
		t := time.NewTimer(req.delay)
		select {
		case <-c.ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	start := time.Now()
	if err := c.player.Play(c.ctx, req.clip); err != nil {
		if c.ctx.Err() == nil {
			c.logger.Warn("playback failed", "clip", req.clip.Name, "error", err)
		}
		return
	}
	c.logger.Debug("played clip",
		"clip", req.clip.Name,
		"duration", req.clip.Duration(),
		"elapsed", time.Since(start),
	)
}

func (c *Coordinator) reportDepth(depth int) {
	if c.observer != nil {
		c.observer.QueueDepth(depth)
	}
}
