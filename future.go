// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"
	"sync"
)

type futureState int

const (
	pending futureState = iota
	running
	completed
)

// A Future is the pending result of a submitted request.
//
// A Future is resolved exactly once, either with the value produced by
// the result transform or with an error. It is safe for concurrent use
// by multiple goroutines.
type Future[T any] struct {
	mu        sync.Mutex
	state     futureState
	cancelled bool
	done      chan struct{}
	value     T
	err       error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func failedFuture[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Done returns a channel which is closed when the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future is resolved or ctx is done. If ctx is
// done first, the future is left untouched and ctx.Err() is returned.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel resolves the future with a KindCancelled error if no attempt
// is currently running, and reports whether it did. A running attempt
// is never interrupted, and a resolved future cannot be cancelled.
//
// A future waiting between retries can be cancelled: the retry is then
// dropped.
func (f *Future[T]) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != pending {
		return false
	}
	f.cancelled = true
	f.resolve(*new(T), ErrCancelled)
	return true
}

// Cancelled reports whether the future was resolved by Cancel.
func (f *Future[T]) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

// start moves a pending future to running. It returns false if the
// future was cancelled.
func (f *Future[T]) start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != pending {
		return false
	}
	f.state = running
	return true
}

// pause moves a running future back to pending while a retry waits.
func (f *Future[T]) pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == running {
		f.state = pending
	}
}

func (f *Future[T]) complete(v T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == completed {
		return false
	}
	f.resolve(v, err)
	return true
}

func (f *Future[T]) resolve(v T, err error) {
	f.state = completed
	f.value, f.err = v, err
	close(f.done)
}
