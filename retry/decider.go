// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transient"
)

// A Decider decides if a failed attempt should be re-submitted. It is
// only consulted after a failure, so e.Err is never nil.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It also provides the logical composition
// methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of retries DefaultDecider allows.
const DefaultTimes = 3

// DefaultDecider allows up to DefaultTimes retries (so up to four
// attempts in total), and only for transient errors or a response with
// status 429, 502, 503 or 504.
var DefaultDecider = Times(DefaultTimes).And(StatusCode(429, 502, 503, 504).Or(TransientErr))

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
var TransientErr DeciderFunc = transientErr

// Decide returns f(e).
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise. Short-circuit
// logic is used, so g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns true
// if either sub-decider returns true. Short-circuit logic is used, so g
// is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the zero-based attempt counter
// is less than n.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt.N < n
	}
}

// Before constructs a retry decider allowing retries until d has
// elapsed since the submission was accepted.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode constructs a retry decider which returns true if the
// failed attempt received a response whose status code is one of ss.
// A failed attempt has a response when the server answered with an
// error status, or when the result transform rejected the response.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func transientErr(e *request.Execution) bool {
	return transient.IsTransient(e.Err)
}
