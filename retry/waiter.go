// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogama/httpq/request"
)

// A Waiter specifies how long to wait before re-submitting a failed
// attempt. The wait is timed outside the worker pool, so a waiting
// retry never occupies a worker.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines. The dispatcher only calls the Waiter after the Decider
// returned true.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter uses a jittered exponential backoff with a base wait of
// 50 milliseconds and a maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now())

// NewFixedWaiter constructs a Waiter that always returns d.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing the "Full Jitter"
// exponential backoff: the ceiling for attempt n is
//
//	ceil := min(base * 2**n, max)
//
// and the wait is a random duration in [0, ceil). Base must be positive
// and max at least equal to base.
//
// Parameter jitter seeds the random number generator. It may be a
// time.Time, int, int64 or uint64 seed, or a ready *rand.Rand from
// math/rand/v2. Pass nil for a waiter that always returns the ceiling.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("httpq/retry: base must be positive")
	}
	if max < base {
		panic("httpq/retry: max must be at least base")
	}
	return &expWaiter{
		base: base,
		max:  max,
		rand: jitterRand(jitter),
	}
}

type expWaiter struct {
	base time.Duration
	max  time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := w.ceil(e.Attempt.N)
	if w.rand == nil || ceil <= 0 {
		return ceil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Duration(w.rand.Int64N(int64(ceil)))
}

func (w *expWaiter) ceil(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	if n >= 62 {
		return w.max
	}
	d := w.base * time.Duration(int64(1)<<uint(n))
	if d < w.base || d > w.max {
		return w.max
	}
	return d
}

func jitterRand(jitter interface{}) *rand.Rand {
	var seed uint64
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		seed = uint64(j.UnixNano())
	case int:
		seed = uint64(j)
	case int64:
		seed = uint64(j)
	case uint64:
		seed = j
	case *rand.Rand:
		if j == nil {
			panic("httpq/retry: jitter may not be a typed nil")
		}
		return j
	default:
		panic("httpq/retry: invalid jitter type")
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
