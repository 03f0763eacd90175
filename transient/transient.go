// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Not means a retry after the error is very unlikely to succeed. Every
// other category means a retry has some prospect of success.
type Category int

const (
	// Not indicates a nil error or any non-transient error.
	Not Category = iota
	// Timeout indicates a connect or read timeout in the transport.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() method which reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED), typically because the service is restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (ECONNRESET).
	ConnReset
	// Truncated indicates the connection ended before a complete
	// response was read (io.ErrUnexpectedEOF).
	Truncated
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"Truncated",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err. Wrapped causes are
// examined as well as err itself. Temporary() methods are ignored, as
// their semantics aren't clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return Truncated
	}

	return Not
}

// IsTransient reports whether err falls in any category other than Not.
func IsTransient(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
