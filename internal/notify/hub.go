// Package notify fans task notifications out to the configured sinks:
// websocket clients, the log, redis pub/sub, kafka and rabbitmq.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/ctxutil"
	"github.com/ncobase/taskdesk/logging/logger"
)

// Sink delivers notifications to one destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n structs.Notification) error
}

type item struct {
	ctx context.Context
	n   structs.Notification
}

// Hub queues notifications in a buffered channel and delivers them to
// every sink from worker goroutines. Notify never waits on a sink.
type Hub struct {
	sinks   []Sink
	buffer  chan item
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewHub creates a hub with the given buffer size. timeout bounds each
// delivery and the wait for buffer space.
func NewHub(bufferSize int, timeout time.Duration, sinks ...Sink) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if timeout <= 0 {
		timeout = ctxutil.DefaultAsyncTimeout
	}
	return &Hub{
		sinks:   sinks,
		buffer:  make(chan item, bufferSize),
		timeout: timeout,
	}
}

// Sinks returns the names of the attached sinks.
func (h *Hub) Sinks() []string {
	names := make([]string, len(h.sinks))
	for i, s := range h.sinks {
		names[i] = s.Name()
	}
	return names
}

// Start launches the workers. They exit when ctx is done or the hub is
// shut down.
func (h *Hub) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.worker(ctx)
	}
	logger.Info(ctx, "Notification hub started", "workers", workers, "sinks", h.Sinks())
}

// Notify queues n. It implements the store notifier.
func (h *Hub) Notify(ctx context.Context, n structs.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.stopped {
		logger.Warn(ctx, "Notification dropped, hub stopped", "id", n.ID, "topic", n.Topic)
		return
	}

	select {
	case h.buffer <- item{ctx: context.WithoutCancel(ctx), n: n}:
	case <-time.After(h.timeout):
		logger.Warn(ctx, "Notification dropped, buffer full", "id", n.ID, "topic", n.Topic)
	}
}

func (h *Hub) worker(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case it, ok := <-h.buffer:
			if !ok {
				return
			}
			h.dispatch(it)
		}
	}
}

func (h *Hub) dispatch(it item) {
	for _, s := range h.sinks {
		ctx, cancel := ctxutil.WithAsyncContext(it.ctx, h.timeout)
		err := deliver(ctx, s, it.n)
		cancel()
		if err != nil {
			logger.Error(it.ctx, "Notification delivery failed",
				"sink", s.Name(),
				"id", it.n.ID,
				"topic", it.n.Topic,
				"error", err)
		}
	}
}

// deliver keeps a panicking sink from taking the worker down.
func deliver(ctx context.Context, s Sink, n structs.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return s.Deliver(ctx, n)
}

// Shutdown stops accepting notifications and waits for the queued ones to
// be delivered or for ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	close(h.buffer)
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info(ctx, "Notification hub stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification hub shutdown: %w, %d pending", ctx.Err(), len(h.buffer))
	}
}
