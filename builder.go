// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"io"
	"strings"
	"time"

	"github.com/gogama/httpq/request"
)

// Void is the result type of a request with no result transform.
type Void struct{}

// A Draft is a request whose target is not yet known. The only way
// forward from a Draft is to set the host, which yields a Builder.
type Draft struct {
	d    *Dispatcher
	spec *request.Spec
	err  error
}

// NewRequest starts a request with the given method, to be sent
// through d. The method may be any HTTP token.
func NewRequest(d *Dispatcher, method string) *Draft {
	dr := &Draft{d: d, spec: request.NewSpec(method)}
	if !request.ValidMethod(method) {
		dr.err = invalidArgument("method", "invalid method %q", method)
	}
	return dr
}

// Get starts a GET request.
func Get(d *Dispatcher) *Draft { return NewRequest(d, "GET") }

// Post starts a POST request.
func Post(d *Dispatcher) *Draft { return NewRequest(d, "POST") }

// Put starts a PUT request.
func Put(d *Dispatcher) *Draft { return NewRequest(d, "PUT") }

// Delete starts a DELETE request.
func Delete(d *Dispatcher) *Draft { return NewRequest(d, "DELETE") }

// Head starts a HEAD request.
func Head(d *Dispatcher) *Draft { return NewRequest(d, "HEAD") }

// Patch starts a PATCH request.
func Patch(d *Dispatcher) *Draft { return NewRequest(d, "PATCH") }

// WithHost sets the server host and port. The host is a dot-separated
// sequence of labels made of letters, digits, underscores and hyphens,
// and the port must be in the range 0-65535.
func (dr *Draft) WithHost(host string, port int) *Builder[Void] {
	b := dr.builder()
	if b.err != nil {
		return b
	}
	if !request.ValidHost(host) {
		return b.fail(invalidArgument("host", "invalid host %q", host))
	}
	if !request.ValidPort(port) {
		return b.fail(invalidArgument("port", "invalid port %d", port))
	}
	b.spec.Host, b.spec.Port = host, port
	return b
}

// WithHostPort sets the server host and port from a "host:port"
// string. Unlike WithHost, port 0 is rejected.
func (dr *Draft) WithHostPort(hostPort string) *Builder[Void] {
	b := dr.builder()
	if b.err != nil {
		return b
	}
	host, port, err := request.ParseHostPort(hostPort)
	if err != nil {
		return b.fail(&Error{Kind: KindInvalidArgument, Op: "host", Err: err})
	}
	b.spec.Host, b.spec.Port = host, port
	return b
}

func (dr *Draft) builder() *Builder[Void] {
	return &Builder[Void]{d: dr.d, spec: dr.spec, err: dr.err}
}

// A Builder assembles a request whose result has type T.
//
// Every method returns the same builder so calls chain. The first
// invalid argument aborts the chain: it is recorded, later calls do
// nothing, Err returns it, and Send returns a future which has already
// failed with it.
//
// A Builder is not safe for concurrent use.
type Builder[T any] struct {
	d         *Dispatcher
	spec      *request.Spec
	transform Transform[T]
	onError   ErrorHandler
	err       error
}

func (b *Builder[T]) fail(err error) *Builder[T] {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first configuration error, or nil.
func (b *Builder[T]) Err() error {
	return b.err
}

// Spec returns a copy of the request assembled so far.
func (b *Builder[T]) Spec() *request.Spec {
	return b.spec.Clone()
}

// WithPath sets the request path. It is stored verbatim and may carry
// a query string; it must not contain spaces, control characters or a
// fragment.
func (b *Builder[T]) WithPath(path string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if strings.IndexFunc(path, badPathRune) >= 0 {
		return b.fail(invalidArgument("path", "invalid path %q", path))
	}
	b.spec.Path = path
	return b
}

func badPathRune(r rune) bool {
	return r <= ' ' || r == 0x7f || r == '#'
}

// WithHeader sets a request header. Names are case-sensitive and a
// second value for the same name replaces the first.
func (b *Builder[T]) WithHeader(name, value string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if !request.ValidHeaderName(name) {
		return b.fail(invalidArgument("header", "invalid header name %q", name))
	}
	if !request.ValidHeaderValue(value) {
		return b.fail(invalidArgument("header", "invalid value for header %q: %q", name, value))
	}
	b.spec.Headers[name] = value
	return b
}

// WithIntHeader sets a header to a decimal integer.
func (b *Builder[T]) WithIntHeader(name string, value int64) *Builder[T] {
	return b.WithHeader(name, request.FormatInt(value))
}

// WithFloatHeader sets a header to a decimal number.
func (b *Builder[T]) WithFloatHeader(name string, value float64) *Builder[T] {
	return b.WithHeader(name, request.FormatFloat(value))
}

// WithBoolHeader sets a header to "true" or "false".
func (b *Builder[T]) WithBoolHeader(name string, value bool) *Builder[T] {
	return b.WithHeader(name, request.FormatBool(value))
}

// WithDateHeader sets a header to t in the RFC 1123 GMT format, e.g.
// "Thu, 15 Oct 2026 10:30:00 GMT".
func (b *Builder[T]) WithDateHeader(name string, t time.Time) *Builder[T] {
	return b.WithHeader(name, request.FormatDate(t))
}

// WithParam sets a request parameter. Parameters travel in the query
// string unless the request is URL-encoded or multipart. The value is
// escaped when the URL is built, so any text is allowed.
func (b *Builder[T]) WithParam(name, value string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(invalidArgument("param", "empty parameter name"))
	}
	b.spec.Params[name] = value
	return b
}

// WithIntParam sets a parameter to a decimal integer.
func (b *Builder[T]) WithIntParam(name string, value int64) *Builder[T] {
	return b.WithParam(name, request.FormatInt(value))
}

// WithFloatParam sets a parameter to a decimal number.
func (b *Builder[T]) WithFloatParam(name string, value float64) *Builder[T] {
	return b.WithParam(name, request.FormatFloat(value))
}

// WithBoolParam sets a parameter to "true" or "false".
func (b *Builder[T]) WithBoolParam(name string, value bool) *Builder[T] {
	return b.WithParam(name, request.FormatBool(value))
}

// WithDateParam sets a parameter to t in the same RFC 1123 GMT format
// as WithDateHeader.
func (b *Builder[T]) WithDateParam(name string, t time.Time) *Builder[T] {
	return b.WithParam(name, request.FormatDate(t))
}

// WithRetries limits the request to n attempts. It does not by itself
// cause retries; those are up to the dispatcher's retry policy.
func (b *Builder[T]) WithRetries(n int) *Builder[T] {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		return b.fail(invalidArgument("retries", "retries count should be positive, got %d", n))
	}
	b.spec.MaxAttempts = n
	return b
}

// WithHTTPS selects the https scheme.
func (b *Builder[T]) WithHTTPS() *Builder[T] {
	if b.err == nil {
		b.spec.HTTPS = true
	}
	return b
}

// IgnoreTLSErrors disables TLS certificate verification for https
// requests.
func (b *Builder[T]) IgnoreTLSErrors() *Builder[T] {
	if b.err == nil {
		b.spec.IgnoreTLSErrors = true
	}
	return b
}

// URLEncoded marks the request as having a URL-encoded body. The
// parameters are then left out of the query string; install a
// BodyEncoder or a body writer to send them.
func (b *Builder[T]) URLEncoded() *Builder[T] {
	if b.err != nil {
		return b
	}
	if b.spec.MultiPart {
		return b.fail(invalidArgument("mode", "request is already multipart"))
	}
	b.spec.URLEncoded = true
	return b
}

// MultiPart marks the request as multipart. There is no built-in
// multipart encoding: a body writer or a BodyEncoder is required.
func (b *Builder[T]) MultiPart() *Builder[T] {
	if b.err != nil {
		return b
	}
	if b.spec.URLEncoded {
		return b.fail(invalidArgument("mode", "request is already URL-encoded"))
	}
	b.spec.MultiPart = true
	return b
}

// WithBodyEncoder installs the encoder which turns the parameters of a
// URL-encoded or multipart request into its body.
func (b *Builder[T]) WithBodyEncoder(enc request.BodyEncoder) *Builder[T] {
	if b.err != nil {
		return b
	}
	if enc == nil {
		return b.fail(invalidArgument("body", "nil body encoder"))
	}
	b.spec.Encoder = enc
	return b
}

// WithRequestStream installs f as the raw body writer. The sink is
// handed over as-is and f is responsible for closing it.
func (b *Builder[T]) WithRequestStream(f func(w io.WriteCloser) error) *Builder[T] {
	if b.err != nil {
		return b
	}
	if f == nil {
		return b.fail(invalidArgument("body", "nil body writer"))
	}
	b.spec.Body = request.StreamBody(f)
	return b
}

// WithRequestText sends text encoded in the named charset as the body.
// An empty charset means UTF-8.
func (b *Builder[T]) WithRequestText(text, charset string) *Builder[T] {
	if b.err != nil {
		return b
	}
	w, err := request.TextBody(text, charset)
	if err != nil {
		return b.fail(&Error{Kind: KindInvalidArgument, Op: "body", Err: err})
	}
	b.spec.Body = w
	return b
}

// WithRequestTextFunc is like WithRequestText, but the text is obtained
// from f when the body is written.
func (b *Builder[T]) WithRequestTextFunc(f func() string, charset string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if f == nil {
		return b.fail(invalidArgument("body", "nil text supplier"))
	}
	w, err := request.TextFuncBody(f, charset)
	if err != nil {
		return b.fail(&Error{Kind: KindInvalidArgument, Op: "body", Err: err})
	}
	b.spec.Body = w
	return b
}

// WithRequestBytes sends the bytes returned by f as the body.
func (b *Builder[T]) WithRequestBytes(f func() []byte) *Builder[T] {
	if b.err != nil {
		return b
	}
	if f == nil {
		return b.fail(invalidArgument("body", "nil bytes supplier"))
	}
	b.spec.Body = request.BytesBody(f)
	return b
}

// OnError installs the handler called when the request fails for good.
func (b *Builder[T]) OnError(h ErrorHandler) *Builder[T] {
	if b.err != nil {
		return b
	}
	if h == nil {
		return b.fail(invalidArgument("onError", "nil error handler"))
	}
	b.onError = h
	return b
}

// Send submits the request and returns the future of its result. It
// never blocks. If the builder holds a configuration error, the
// returned future has already failed with it and nothing is submitted.
func (b *Builder[T]) Send() *Future[T] {
	if b.err != nil {
		return failedFuture[T](b.err)
	}
	spec := b.spec.Clone()
	if err := spec.Validate(); err != nil {
		b.err = &Error{Kind: KindInvalidArgument, Op: "send", Err: err}
		return failedFuture[T](b.err)
	}
	if b.d == nil {
		return failedFuture[T](&Error{Kind: KindClosed, Op: "send", URL: request.URL(spec), Err: errNoDispatcher})
	}
	return Submit(b.d, request.NewAttempt(spec), b.transform, b.onError)
}
