// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Dispatcher to extend it with
// custom functionality such as logging, tracing or metrics.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs when a
	// submission is received, before it is admitted to the queue.
	//
	// BeforeExecutionStart handlers run on the submitting goroutine.
	// The execution's ID, attempt and URL are set; its start time is
	// not yet set.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs on a worker
	// goroutine just before an attempt opens its transport connection.
	BeforeAttempt
	// BeforeTransform identifies the event that occurs after the
	// response status and headers have been read, but before the
	// result transform consumes the body.
	//
	// When the dispatcher fires BeforeTransform, the execution's Info
	// field is set. BeforeTransform never fires if the attempt failed
	// before a response was received, or if the response status was
	// an error status.
	BeforeTransform
	// AfterAttempt identifies the event that occurs after an attempt
	// is concluded, regardless of whether it succeeded.
	//
	// When the dispatcher fires AfterAttempt, the execution's Err field
	// holds the failure of the attempt, or nil on success. AfterAttempt
	// runs before the retry policy is consulted.
	AfterAttempt
	// BeforeRetry identifies the event that occurs after the retry
	// policy decided to retry a failed attempt, before the wait starts.
	//
	// The execution still describes the failed attempt: its attempt
	// counter is incremented after all BeforeRetry handlers finish.
	BeforeRetry
	// AfterExecutionEnd identifies the event that occurs once the
	// submission reaches a final outcome, whether success, failure or
	// cancellation.
	//
	// When the dispatcher fires AfterExecutionEnd, the end time of the
	// execution is set.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeTransform",
	"AfterAttempt",
	"BeforeRetry",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur during
// a request execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeTransform,
		AfterAttempt,
		BeforeRetry,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
