// Package apply runs the deferred "apply to a live placement" hook after a
// new asset has been generated, giving file watchers time to pick up the new
// files first.
//
// Typical usage:
//
//	task := apply.Schedule(ctx, applier, asset.ID, at, apply.Options{Delay: 10 * time.Second})
//	defer task.Cancel()
//	err := task.Wait()
package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eak1mov/go-libframes/frame"
)

// ErrCancelled is returned by Task.Wait when the task was cancelled before
// the hook ran.
var ErrCancelled = errors.New("libframes: apply cancelled")

// Options tunes a scheduled apply.
type Options struct {
	// Delay before the hook is called. Default: 10s.
	Delay time.Duration
	// Timeout of the hook call itself. Default: 30s.
	Timeout time.Duration
	// Logger overrides the default discard logger.
	Logger *slog.Logger
}

const (
	DefaultDelay   = 10 * time.Second
	DefaultTimeout = 30 * time.Second
)

func (o *Options) defaults() {
	if o.Delay < 0 {
		o.Delay = 0
	} else if o.Delay == 0 {
		o.Delay = DefaultDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Task is a single scheduled hook call owned by the caller.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Schedule calls applier.Apply(assetID, at) once Delay has passed, unless
// ctx is done or the task is cancelled first. A negative Delay runs the hook
// immediately.
func Schedule(ctx context.Context, applier frame.Applier, assetID string, at frame.Coords, opts Options) *Task {
	opts.defaults()
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()
		t.err = run(ctx, applier, assetID, at, opts)
	}()
	return t
}

func run(ctx context.Context, applier frame.Applier, assetID string, at frame.Coords, opts Options) error {
	logger := opts.Logger.With("asset", assetID, "coords", at.String())

	timer := time.NewTimer(opts.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		logger.Debug("libframes: apply cancelled")
		return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	case <-timer.C:
	}

	applyCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := applier.Apply(applyCtx, assetID, at); err != nil {
		logger.Warn("libframes: apply failed", "error", err)
		return err
	}
	logger.Info("libframes: asset applied")
	return nil
}

// Cancel stops the task if the hook has not been called yet, and cancels
// the context of a running hook call.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task has finished and returns its result.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// ApplierFunc adapts a function to frame.Applier.
type ApplierFunc func(ctx context.Context, assetID string, at frame.Coords) error

func (f ApplierFunc) Apply(ctx context.Context, assetID string, at frame.Coords) error {
	return f(ctx, assetID, at)
}
