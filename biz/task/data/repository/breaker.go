package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/logging/observes"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// Breaker fails calls fast while the wrapped backend keeps failing. It
// never retries; a rejected call returns gobreaker.ErrOpenState or
// gobreaker.ErrTooManyRequests.
type Breaker struct {
	next Repository
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. A missing row and a cancelled context are answers,
// not failures, and do not count towards tripping.
func NewBreaker(name string, next Repository, cfg *config.Breaker) *Breaker {
	if cfg == nil {
		cfg = &config.Breaker{MaxRequests: 1, Failures: 5}
	}
	failures := cfg.Failures
	if failures == 0 {
		failures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "task backend circuit changed state", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, structs.ErrTaskNotFound) || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Name returns the breaker name, "tasks.<driver>".
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// State reports the breaker state, e.g. for the health endpoint.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) List(ctx context.Context, userID string) ([]structs.RemoteTask, error) {
	var rows []structs.RemoteTask
	err := b.execute(ctx, "List", func(ctx context.Context) (err error) {
		rows, err = b.next.List(ctx, userID)
		return err
	}, attribute.String("user_id", userID))
	return rows, err
}

func (b *Breaker) Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	var row structs.RemoteTask
	err := b.execute(ctx, "Insert", func(ctx context.Context) (err error) {
		row, err = b.next.Insert(ctx, in)
		return err
	}, attribute.String("user_id", in.UserID))
	return row, err
}

func (b *Breaker) Update(ctx context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	var row structs.RemoteTask
	err := b.execute(ctx, "Update", func(ctx context.Context) (err error) {
		row, err = b.next.Update(ctx, userID, id, patch)
		return err
	}, attribute.String("user_id", userID), attribute.String("task_id", id))
	return row, err
}

func (b *Breaker) Delete(ctx context.Context, userID, id string) error {
	return b.execute(ctx, "Delete", func(ctx context.Context) error {
		return b.next.Delete(ctx, userID, id)
	}, attribute.String("user_id", userID), attribute.String("task_id", id))
}

func (b *Breaker) execute(ctx context.Context, op string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := observes.StartSpan(ctx, observes.LayerRepo, b.cb.Name()+"."+op, attrs...)
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	observes.EndSpan(span, err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s backend unavailable: %w", b.cb.Name(), err)
	}
	return err
}
