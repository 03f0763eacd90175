// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

// Transport is the default Opener. It opens connections which send
// their request through a net/http client.
//
// Connections are lazy: nothing is sent until the output sink is
// requested or a response accessor is called. The request body is
// streamed through a pipe, so it is never buffered in memory.
//
// The zero value is ready to use. Transport keeps one client per
// combination of proxy mode, TLS verification and redirect policy, so
// a Transport should be reused rather than created per request.
type Transport struct {
	// ConnectTimeout limits the time taken to establish a TCP
	// connection. Zero means no limit.
	ConnectTimeout time.Duration

	// ReadTimeout limits the time spent waiting for the response
	// headers once the request has been written. Zero means no limit.
	ReadTimeout time.Duration

	// Doer, if not nil, sends every request instead of the internally
	// managed clients. The proxy, TLS and redirect settings of a
	// connection are then up to the Doer.
	Doer HTTPDoer

	mu      sync.Mutex
	clients map[clientKey]*http.Client
}

type clientKey struct {
	proxy    ProxyMode
	insecure bool
	follow   bool
}

// Open returns a new unsent connection to rawURL.
func (t *Transport) Open(ctx context.Context, rawURL string, proxy ProxyMode) (Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("httpq/transport: unsupported scheme " + strconv.Quote(u.Scheme))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &httpConn{
		t:      t,
		ctx:    ctx,
		url:    u,
		method: http.MethodGet,
		header: make(http.Header),
		key:    clientKey{proxy: proxy},
	}, nil
}

// CloseIdleConnections closes idle connections held by the clients the
// Transport manages, or forwards the call to Doer if it supports it.
func (t *Transport) CloseIdleConnections() {
	if t.Doer != nil {
		if ic, ok := t.Doer.(interface{ CloseIdleConnections() }); ok {
			ic.CloseIdleConnections()
		}
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.CloseIdleConnections()
	}
}

func (t *Transport) doer(key clientKey) HTTPDoer {
	if t.Doer != nil {
		return t.Doer
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[key]; ok {
		return c
	}
	if t.clients == nil {
		t.clients = make(map[clientKey]*http.Client)
	}
	c := t.newClient(key)
	t.clients[key] = c
	return c
}

func (t *Transport) newClient(key clientKey) *http.Client {
	dialer := &net.Dialer{Timeout: t.ConnectTimeout}
	rt := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   t.ConnectTimeout,
		ResponseHeaderTimeout: t.ReadTimeout,
		ForceAttemptHTTP2:     true,
	}
	if key.proxy == EnvironmentProxy {
		proxyFunc := httpproxy.FromEnvironment().ProxyFunc()
		rt.Proxy = func(r *http.Request) (*url.URL, error) {
			return proxyFunc(r.URL)
		}
	}
	if key.insecure {
		rt.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
	}
	c := &http.Client{Transport: rt}
	if !key.follow {
		c.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

type httpConn struct {
	t      *Transport
	ctx    context.Context
	url    *url.URL
	method string
	header http.Header
	close  bool
	key    clientKey

	body *pipeBody
	pw   *io.PipeWriter
	done chan struct{}
	resp *http.Response
	err  error

	closeOnce sync.Once
}

var errAlreadySent = errors.New("httpq/transport: request already sent")

func (c *httpConn) SetMethod(method string) error {
	if c.done != nil {
		return errAlreadySent
	}
	if method == "" {
		method = http.MethodGet
	}
	c.method = method
	return nil
}

func (c *httpConn) SetFollowRedirects(follow bool) {
	c.key.follow = follow
}

func (c *httpConn) SkipTLSVerify() {
	c.key.insecure = true
}

func (c *httpConn) AddHeader(name, value string) {
	if strings.EqualFold(name, "Connection") && strings.EqualFold(value, "close") {
		c.close = true
	}
	c.header[name] = append(c.header[name], value)
}

func (c *httpConn) OutputSink() (io.WriteCloser, error) {
	if c.done != nil {
		return nil, errAlreadySent
	}
	pr, pw := io.Pipe()
	c.body = &pipeBody{pr: pr}
	c.pw = pw
	c.send()
	return pw, nil
}

func (c *httpConn) StatusCode() (int, error) {
	if err := c.wait(); err != nil {
		return 0, err
	}
	return c.resp.StatusCode, nil
}

func (c *httpConn) StatusMessage() (string, error) {
	if err := c.wait(); err != nil {
		return "", err
	}
	code := strconv.Itoa(c.resp.StatusCode)
	return strings.TrimSpace(strings.TrimPrefix(c.resp.Status, code)), nil
}

func (c *httpConn) ResponseHeaders() (map[string][]string, error) {
	if err := c.wait(); err != nil {
		return nil, err
	}
	return c.resp.Header, nil
}

func (c *httpConn) InputStream() (io.Reader, error) {
	if err := c.wait(); err != nil {
		return nil, err
	}
	return c.resp.Body, nil
}

func (c *httpConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.pw != nil {
			_ = c.pw.CloseWithError(io.ErrClosedPipe)
		}
		if c.done != nil {
			<-c.done
		}
		if c.body != nil {
			_ = c.body.pr.Close()
		}
		if c.resp != nil {
			err = c.resp.Body.Close()
		}
	})
	return err
}

// send starts the request. With a pipe body the request must be in
// flight while the caller writes, so it always runs asynchronously.
func (c *httpConn) send() {
	c.done = make(chan struct{})
	var body io.ReadCloser
	if c.body != nil {
		body = c.body
	}
	req, err := http.NewRequestWithContext(c.ctx, c.method, c.url.String(), body)
	if err != nil {
		c.err = err
		if c.body != nil {
			c.body.finish(err)
		}
		close(c.done)
		return
	}
	req.Header = c.header
	req.Close = c.close
	doer := c.t.doer(c.key)
	go func() {
		defer close(c.done)
		resp, err := doer.Do(req)
		if c.body != nil {
			c.body.finish(err)
		}
		c.resp, c.err = resp, err
	}()
}

func (c *httpConn) wait() error {
	if c.done == nil {
		c.send()
	}
	if c.pw != nil {
		_ = c.pw.Close()
	}
	<-c.done
	return c.err
}

// pipeBody is the request body handed to net/http. A Close from the
// client is deferred until Do returns, so that a writer blocked on the
// pipe sees the error which ended the request rather than a bare
// io.ErrClosedPipe.
type pipeBody struct {
	pr *io.PipeReader

	mu       sync.Mutex
	closed   bool
	finished bool
}

func (b *pipeBody) Read(p []byte) (int, error) {
	return b.pr.Read(p)
}

func (b *pipeBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return b.pr.Close()
	}
	b.closed = true
	return nil
}

func (b *pipeBody) finish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
	if err != nil {
		_ = b.pr.CloseWithError(err)
	} else if b.closed {
		_ = b.pr.Close()
	}
}
