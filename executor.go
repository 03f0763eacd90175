// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transport"
)

// A Transform turns a response into a result. It receives the response
// metadata and the raw body stream, which it need not close.
type Transform[T any] func(info request.ResponseInfo, body io.Reader) (T, error)

// An ErrorHandler is called once when a request fails for good, with
// the failure of every attempt made, in order.
type ErrorHandler func(failures []error)

// task is the type-erased view of a submission which the dispatcher
// works with.
type task interface {
	execution() *request.Execution
	begin() bool
	pause()
	attempt(ctx context.Context, d *Dispatcher) error
	succeed()
	fail(err error) bool
	handleError(failures []error)
}

type call[T any] struct {
	exec      *request.Execution
	transform Transform[T]
	onError   ErrorHandler
	future    *Future[T]
	value     T
}

func (c *call[T]) execution() *request.Execution {
	return c.exec
}

func (c *call[T]) begin() bool {
	return c.future.start()
}

func (c *call[T]) pause() {
	c.future.pause()
}

func (c *call[T]) attempt(ctx context.Context, d *Dispatcher) error {
	return d.execute(ctx, c.exec, func(info request.ResponseInfo, body io.Reader) error {
		v, err := c.transform(info, body)
		if err != nil {
			return err
		}
		c.value = v
		return nil
	})
}

func (c *call[T]) succeed() {
	c.future.complete(c.value, nil)
}

func (c *call[T]) fail(err error) bool {
	var zero T
	return c.future.complete(zero, err)
}

func (c *call[T]) handleError(failures []error) {
	if c.onError != nil {
		c.onError(append([]error(nil), failures...))
	}
}

func discard[T any](_ request.ResponseInfo, body io.Reader) (T, error) {
	var zero T
	_, err := io.Copy(io.Discard, body)
	return zero, err
}

// execute performs one request/response cycle for the current attempt
// of e. The connection is closed on every path.
func (d *Dispatcher) execute(ctx context.Context, e *request.Execution, consume func(request.ResponseInfo, io.Reader) error) (err error) {
	s := e.Attempt.Spec
	op := "open"
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("id", e.ID).
				Str("url", e.URL).
				Str("op", op).
				Str("panic", panicString(r)).
				Msg("recovered panic during attempt")
			kind := KindTransportFailure
			if op == "transform" {
				kind = KindTransformFailure
			}
			err = &Error{Kind: kind, Op: op, URL: e.URL, Err: fmt.Errorf("panic: %s", panicString(r))}
		}
	}()

	conn, err := d.opener.Open(ctx, e.URL, d.proxy)
	if err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	op = "configure"
	if s.HTTPS && s.IgnoreTLSErrors {
		skipper, ok := conn.(transport.InsecureSkipper)
		if !ok {
			return &Error{Kind: KindUnsupported, Op: op, URL: e.URL, Err: errors.New("transport cannot skip TLS verification")}
		}
		skipper.SkipTLSVerify()
	}
	if err = conn.SetMethod(s.Method); err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}
	conn.SetFollowRedirects(true)
	conn.AddHeader("Connection", "close")
	for _, name := range sortedKeys(s.Headers) {
		conn.AddHeader(name, s.Headers[name])
	}

	op = "write"
	body, err := bodyWriter(s)
	if err != nil {
		return &Error{Kind: KindUnsupported, Op: op, URL: e.URL, Err: err}
	}
	if body != nil {
		sink, err := conn.OutputSink()
		if err != nil {
			return wrap(KindTransportFailure, op, e.URL, err)
		}
		if err = body(sink); err != nil {
			return wrap(KindTransportFailure, op, e.URL, err)
		}
	}

	op = "status"
	code, err := conn.StatusCode()
	if err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}
	msg, err := conn.StatusMessage()
	if err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}
	header, err := conn.ResponseHeaders()
	if err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}
	info := request.NewResponseInfo(code, msg, header)
	e.Info = &info
	if code >= 400 {
		return &Error{Kind: KindTransportFailure, Op: op, URL: e.URL, Err: &StatusError{StatusCode: code, Status: msg}}
	}

	op = "read"
	in, err := conn.InputStream()
	if err != nil {
		return wrap(KindTransportFailure, op, e.URL, err)
	}

	d.handlers.run(BeforeTransform, e)
	op = "transform"
	if err = consume(info, in); err != nil {
		return wrap(KindTransformFailure, op, e.URL, err)
	}
	return nil
}

// bodyWriter picks the writer for the request body of s, or nil if no
// body is sent.
func bodyWriter(s *request.Spec) (request.BodyWriter, error) {
	switch {
	case s.Body != nil:
		return s.Body, nil
	case (s.URLEncoded || s.MultiPart) && s.Encoder != nil:
		return request.EncodedBody(s.Encoder, s.Params), nil
	case s.MultiPart:
		return nil, errors.New("multipart request has neither a body nor an encoder")
	default:
		return nil, nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func panicString(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
