// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogama/httpq/transport"
)

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) Open(ctx context.Context, rawURL string, proxy transport.ProxyMode) (transport.Connection, error) {
	args := m.Called(ctx, rawURL, proxy)
	c, _ := args.Get(0).(transport.Connection)
	return c, args.Error(1)
}

type mockConn struct {
	mock.Mock
}

func (m *mockConn) SetMethod(method string) error {
	return m.Called(method).Error(0)
}

func (m *mockConn) SetFollowRedirects(follow bool) {
	m.Called(follow)
}

func (m *mockConn) AddHeader(name, value string) {
	m.Called(name, value)
}

func (m *mockConn) OutputSink() (io.WriteCloser, error) {
	args := m.Called()
	w, _ := args.Get(0).(io.WriteCloser)
	return w, args.Error(1)
}

func (m *mockConn) StatusCode() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *mockConn) StatusMessage() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockConn) ResponseHeaders() (map[string][]string, error) {
	args := m.Called()
	h, _ := args.Get(0).(map[string][]string)
	return h, args.Error(1)
}

func (m *mockConn) InputStream() (io.Reader, error) {
	args := m.Called()
	r, _ := args.Get(0).(io.Reader)
	return r, args.Error(1)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}

type mockTLSConn struct {
	mockConn
}

func (m *mockTLSConn) SkipTLSVerify() {
	m.Called()
}

// expectRequest sets up the calls every attempt makes before its body
// is written.
func expectRequest(c *mock.Mock, method string) {
	c.On("SetMethod", method).Return(nil).Once()
	c.On("SetFollowRedirects", true).Return().Once()
	c.On("AddHeader", "Connection", "close").Return().Once()
	c.On("Close").Return(nil).Once()
}

// expectResponse sets up the calls which read a response.
func expectResponse(c *mock.Mock, code int, msg string, header map[string][]string, body string) {
	c.On("StatusCode").Return(code, nil).Once()
	c.On("StatusMessage").Return(msg, nil).Once()
	c.On("ResponseHeaders").Return(header, nil).Once()
	if code < 400 {
		c.On("InputStream").Return(strings.NewReader(body), nil).Once()
	}
}

func okConn(method string, body string, header map[string][]string) *mockConn {
	c := &mockConn{}
	expectRequest(&c.Mock, method)
	expectResponse(&c.Mock, 200, "OK", header, body)
	return c
}

// sink is an output sink which records what is written.
type sink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestDispatcher(t *testing.T, o transport.Opener, opts ...Option) *Dispatcher {
	t.Helper()
	d := NewDispatcher(append([]Option{WithOpener(o), WithWorkers(2)}, opts...)...)
	t.Cleanup(func() {
		closeDispatcher(t, d)
	})
	return d
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func await[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "future not resolved in time")
	return v, err
}

// failures collects the failure lists passed to an error handler.
type failures struct {
	mu    sync.Mutex
	calls [][]error
}

func (f *failures) handle(errs []error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, errs)
}

func (f *failures) get() [][]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]error(nil), f.calls...)
}
