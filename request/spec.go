// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// A BodyWriter writes a request body into the output sink of a
// transport connection. Most writers close w once the body is fully
// written; a raw stream writer installed with StreamBody leaves that
// decision to the caller.
type BodyWriter func(w io.WriteCloser) error

// A BodyEncoder turns request parameters into a request body. It is the
// hook used for URL-encoded and multipart requests which have no
// explicit BodyWriter.
type BodyEncoder func(params map[string]string, w io.Writer) error

// A Spec describes one logical HTTP request: where to send it, what to
// send, and how many attempts it may consume.
//
// A Spec is assembled by a single builder chain. Once handed to a
// dispatcher it is treated as read-only, so it may be read from a
// worker goroutine without locking. Use Clone to obtain an independent
// copy before handing a Spec to another owner.
type Spec struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.) or any
	// other valid token. An empty string means GET.
	Method string

	// Host is the host name of the server. It is required before the
	// request can be executed.
	Host string

	// Port is the TCP port of the server, in the range 0-65535.
	Port int

	// Path is the request path. It may carry its own query string,
	// which is preserved verbatim by URL.
	Path string

	// Headers contains the request headers. Keys are case-sensitive
	// and each key holds a single value.
	Headers map[string]string

	// Params contains the query parameters. They are appended to the
	// URL unless URLEncoded or MultiPart is set.
	Params map[string]string

	// HTTPS selects the https scheme instead of http.
	HTTPS bool

	// IgnoreTLSErrors asks the transport to skip TLS certificate
	// verification for https requests.
	IgnoreTLSErrors bool

	// MaxAttempts limits the number of attempts which may be made for
	// the request. Zero means there is no limit.
	MaxAttempts int

	// URLEncoded marks a request whose parameters travel in a URL-encoded
	// body rather than in the query string.
	URLEncoded bool

	// MultiPart marks a multipart request. There is no built-in multipart
	// encoding: a Body or an Encoder must be supplied.
	MultiPart bool

	// Body writes the request body. A nil Body means no body is sent,
	// unless Encoder is set.
	Body BodyWriter

	// Encoder encodes Params into the body of a URL-encoded or
	// multipart request which has no Body.
	Encoder BodyEncoder
}

// NewSpec returns an empty Spec for the given method, with the path set
// to "/".
func NewSpec(method string) *Spec {
	if method == "" {
		method = "GET"
	}
	return &Spec{
		Method:  method,
		Path:    "/",
		Headers: make(map[string]string),
		Params:  make(map[string]string),
	}
}

// Clone returns a deep copy of s. The header and parameter maps are
// copied; the body writer and encoder functions are shared.
func (s *Spec) Clone() *Spec {
	s2 := new(Spec)
	*s2 = *s
	s2.Headers = make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		s2.Headers[k] = v
	}
	s2.Params = make(map[string]string, len(s.Params))
	for k, v := range s.Params {
		s2.Params[k] = v
	}
	return s2
}

// Scheme returns "https" if s.HTTPS is set, and "http" otherwise.
func (s *Spec) Scheme() string {
	if s.HTTPS {
		return "https"
	}
	return "http"
}

// Validate checks the invariants which must hold before s can be
// executed. The first violation found is returned.
func (s *Spec) Validate() error {
	if !ValidMethod(s.Method) {
		return fmt.Errorf("httpq/request: invalid method %q", s.Method)
	}
	if s.Host == "" {
		return errors.New("httpq/request: host is not set")
	}
	if !ValidHost(s.Host) {
		return fmt.Errorf("httpq/request: invalid host %q", s.Host)
	}
	if !ValidPort(s.Port) {
		return fmt.Errorf("httpq/request: invalid port %d", s.Port)
	}
	for k, v := range s.Headers {
		if !ValidHeaderName(k) {
			return fmt.Errorf("httpq/request: invalid header name %q", k)
		}
		if !ValidHeaderValue(v) {
			return fmt.Errorf("httpq/request: invalid value for header %q: %q", k, v)
		}
	}
	if s.MaxAttempts < 0 {
		return fmt.Errorf("httpq/request: invalid max attempts %d", s.MaxAttempts)
	}
	if s.URLEncoded && s.MultiPart {
		return errors.New("httpq/request: request cannot be both URL-encoded and multipart")
	}
	return nil
}

// ValidMethod reports whether method is an HTTP method token. The empty
// string is valid and stands for GET.
func ValidMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
