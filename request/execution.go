// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gogama/httpq/transient"
)

// An Execution represents the state of a single request submission,
// from the initial attempt through any retries to the final outcome.
//
// The dispatcher creates one Execution per submission and updates it
// as attempts progress. Event handlers and retry policies receive it,
// and may use SetValue and Value to keep their own data in it, but
// should otherwise treat its fields as read-only.
//
// Attempts belonging to one Execution never run concurrently, so an
// Execution is only ever touched by one goroutine at a time.
type Execution struct {
	// ID uniquely identifies the submission. It is the same for every
	// attempt of the submission.
	ID string

	// Attempt is the current attempt. Its counter is zero on the
	// initial attempt, one on the first retry, and so on.
	Attempt Attempt

	// URL is the URL built from the spec for the current attempt.
	URL string

	// Start is the time the submission was accepted.
	Start time.Time

	// End is the time the submission reached a final outcome. It is
	// zero until then.
	End time.Time

	// Info holds the response metadata of the most recent attempt. It
	// is nil if no response was received.
	Info *ResponseInfo

	// Err is the error which ended the most recent attempt, or nil.
	Err error

	// Failures accumulates the errors of every failed attempt of the
	// submission, in order.
	Failures []error

	data context.Context
}

// NewExecution returns a fresh Execution for the initial attempt a,
// with a new random ID.
func NewExecution(a Attempt) *Execution {
	return &Execution{
		ID:      uuid.NewString(),
		Attempt: a,
		URL:     URL(a.Spec),
	}
}

// StatusCode returns the status code of the most recent response, or 0
// if there is none.
func (e *Execution) StatusCode() int {
	if e.Info == nil {
		return 0
	}
	return e.Info.StatusCode
}

// Header returns the headers of the most recent response, or nil if
// there is none.
func (e *Execution) Header() map[string][]string {
	if e.Info == nil {
		return nil
	}
	return e.Info.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently holds a timeout error.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}
