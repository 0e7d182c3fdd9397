// Package boundary supervises a unit of work: failures, including panics, become
// explicit error state that the caller can show and retry.
package boundary

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Boundary wraps one child computation.
type Boundary struct {
	name string
	log  *zap.Logger

	// OnError is called after each failed run.
	OnError func(err error)

	mu       sync.Mutex
	last     func(context.Context) error
	err      error
	attempts int
}

// New returns a boundary. name tags log lines.
func New(name string, log *zap.Logger) *Boundary {
	if log == nil {
		log = zap.NewNop()
	}
	return &Boundary{name: name, log: log}
}

// Run clears any previous failure and runs fn, capturing its error or panic.
func (b *Boundary) Run(ctx context.Context, fn func(context.Context) error) error {
	b.mu.Lock()
	b.last = fn
	b.err = nil
	b.attempts++
	b.mu.Unlock()

	err := guard(ctx, fn)

	b.mu.Lock()
	b.err = err
	onError := b.OnError
	b.mu.Unlock()

	if err != nil {
		b.log.Error("boundary caught failure", zap.String("boundary", b.name), zap.Error(err))
		if onError != nil {
			onError(err)
		}
	}
	return err
}

// Retry reruns the last computation. It is a no-op returning nil before the first Run.
func (b *Boundary) Retry(ctx context.Context) error {
	b.mu.Lock()
	fn := b.last
	b.mu.Unlock()
	if fn == nil {
		return nil
	}
	b.log.Info("boundary retry", zap.String("boundary", b.name))
	return b.Run(ctx, fn)
}

// Reset clears the failure without rerunning.
func (b *Boundary) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = nil
}

// Err returns the failure of the last run.
func (b *Boundary) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Failed reports whether the last run failed.
func (b *Boundary) Failed() bool { return b.Err() != nil }

// Attempts counts runs, including retries.
func (b *Boundary) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func guard(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}
