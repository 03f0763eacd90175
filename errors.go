// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// A Kind classifies an Error.
type Kind int

const (
	// KindInvalidArgument means the request was misconfigured. It is
	// reported by the builder before anything is submitted.
	KindInvalidArgument Kind = iota + 1
	// KindAttemptsExceeded means the attempt budget of the request was
	// already spent when the attempt was submitted. The transport is
	// never touched.
	KindAttemptsExceeded
	// KindTransportFailure means connecting, writing the request or
	// reading the response failed, or the server answered with an
	// error status.
	KindTransportFailure
	// KindTransformFailure means the result transform returned an error
	// or panicked.
	KindTransformFailure
	// KindQueueFull means the dispatcher backlog was full.
	KindQueueFull
	// KindClosed means the dispatcher was closed.
	KindClosed
	// KindCancelled means the future was cancelled before its attempt
	// started.
	KindCancelled
	// KindUnsupported means the request needs a feature which neither
	// the request nor the transport provides.
	KindUnsupported

	kindSentinel
)

var kindNames = []string{
	"",
	"InvalidArgument",
	"AttemptsExceeded",
	"TransportFailure",
	"TransformFailure",
	"QueueFull",
	"Closed",
	"Cancelled",
	"Unsupported",
}

func (k Kind) String() string {
	if k <= 0 || k >= kindSentinel {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Sentinel errors, one per Kind. Any *Error matches the sentinel of
// its Kind under errors.Is.
var (
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrAttemptsExceeded = &Error{Kind: KindAttemptsExceeded}
	ErrTransportFailure = &Error{Kind: KindTransportFailure}
	ErrTransformFailure = &Error{Kind: KindTransformFailure}
	ErrQueueFull        = &Error{Kind: KindQueueFull}
	ErrClosed           = &Error{Kind: KindClosed}
	ErrCancelled        = &Error{Kind: KindCancelled}
	ErrUnsupported      = &Error{Kind: KindUnsupported}
)

// Error is the error type returned by builders and futures.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Op names the step which failed, e.g. "open" or "transform".
	Op string
	// URL is the request URL, if known.
	URL string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("httpq: ")
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteByte(' ')
		b.WriteString(e.Op)
	}
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.URL))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the Kind of e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.URL == "" && t.Err == nil && t.Kind == e.Kind
}

// IsKind reports whether err, or any error it wraps, is an *Error of
// Kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

var (
	errNoDispatcher = errors.New("builder has no dispatcher")
	errNoSpec       = errors.New("attempt has no spec")
)

func invalidArgument(op string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// wrap returns err as an *Error of Kind k. An err which already is an
// *Error is returned unchanged.
func wrap(k Kind, op, url string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: k, Op: op, URL: url, Err: err}
}

// StatusError is the cause of a KindTransportFailure raised because
// the server answered with a status code of 400 or above.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status == "" {
		return "status " + strconv.Itoa(e.StatusCode)
	}
	return "status " + strconv.Itoa(e.StatusCode) + " " + e.Status
}
