// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ProxyMode selects how a connection reaches the server.
type ProxyMode int

const (
	// NoProxy connects directly to the server, ignoring any proxy
	// configured in the environment.
	NoProxy ProxyMode = iota
	// EnvironmentProxy uses the proxy named by the HTTP_PROXY,
	// HTTPS_PROXY and NO_PROXY environment variables, if any.
	EnvironmentProxy
)

var proxyModeNames = [...]string{
	NoProxy:          "none",
	EnvironmentProxy: "environment",
}

func (m ProxyMode) String() string {
	if m < 0 || int(m) >= len(proxyModeNames) {
		return fmt.Sprintf("ProxyMode(%d)", int(m))
	}
	return proxyModeNames[m]
}

// ParseProxyMode returns the ProxyMode named by s. Matching is
// case-insensitive and the empty string means NoProxy.
func ParseProxyMode(s string) (ProxyMode, error) {
	if s == "" {
		return NoProxy, nil
	}
	for i, name := range proxyModeNames {
		if strings.EqualFold(s, name) {
			return ProxyMode(i), nil
		}
	}
	return NoProxy, fmt.Errorf("httpq/transport: unknown proxy mode %q", s)
}

// An Opener opens connections. Open must not block on network I/O:
// implementations are expected to connect lazily, when the connection
// is first used.
//
// Implementations of Opener must be safe for concurrent use by multiple
// goroutines.
type Opener interface {
	Open(ctx context.Context, rawURL string, proxy ProxyMode) (Connection, error)
}

// The OpenerFunc type is an adapter to allow the use of ordinary
// functions as connection openers.
type OpenerFunc func(ctx context.Context, rawURL string, proxy ProxyMode) (Connection, error)

// Open returns f(ctx, rawURL, proxy).
func (f OpenerFunc) Open(ctx context.Context, rawURL string, proxy ProxyMode) (Connection, error) {
	return f(ctx, rawURL, proxy)
}

// A Connection carries exactly one request and its response.
//
// The request side (SetMethod, SetFollowRedirects, AddHeader and
// OutputSink) must be fully configured before any response accessor is
// called. The first response accessor completes the request, closing
// the output sink if the caller has not already done so.
//
// A Connection is not safe for concurrent use.
type Connection interface {
	// SetMethod sets the request method.
	SetMethod(method string) error
	// SetFollowRedirects controls whether redirect responses are
	// followed.
	SetFollowRedirects(follow bool)
	// AddHeader adds a request header. The name is sent exactly as
	// given and repeated names are sent as separate header lines.
	AddHeader(name, value string)
	// OutputSink returns the writer which streams the request body.
	OutputSink() (io.WriteCloser, error)
	// StatusCode returns the response status code.
	StatusCode() (int, error)
	// StatusMessage returns the response reason phrase, which may be
	// empty.
	StatusMessage() (string, error)
	// ResponseHeaders returns the response headers.
	ResponseHeaders() (map[string][]string, error)
	// InputStream returns the response body.
	InputStream() (io.Reader, error)
	// Close releases every resource held by the connection. It is safe
	// to call Close more than once.
	Close() error
}

// An InsecureSkipper is a Connection which can skip TLS certificate
// verification. Only connections to https URLs need implement it.
type InsecureSkipper interface {
	SkipTLSVerify()
}
