// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransport_Open(t *testing.T) {
	var tr Transport
	t.Run("bad url", func(t *testing.T) {
		_, err := tr.Open(context.Background(), "http://[::1", NoProxy)
		assert.Error(t, err)
	})
	t.Run("bad scheme", func(t *testing.T) {
		_, err := tr.Open(context.Background(), "ftp://test:21/", NoProxy)
		assert.Error(t, err)
	})
}

func TestTransport_RoundTrip(t *testing.T) {
	type received struct {
		method string
		header http.Header
		body   string
		close  bool
	}
	got := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- received{r.Method, r.Header, string(b), r.Close}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "created")
	}))
	defer server.Close()

	var tr Transport
	defer tr.CloseIdleConnections()
	c, err := tr.Open(context.Background(), server.URL+"/items?x=1", NoProxy)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	require.NoError(t, c.SetMethod("PUT"))
	c.SetFollowRedirects(true)
	c.AddHeader("Connection", "close")
	c.AddHeader("X-Trace", "1")
	c.AddHeader("X-Trace", "2")

	w, err := c.OutputSink()
	require.NoError(t, err)
	_, err = io.WriteString(w, "payload")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	code, err := c.StatusCode()
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
	msg, err := c.StatusMessage()
	require.NoError(t, err)
	assert.Equal(t, "Created", msg)
	h, err := c.ResponseHeaders()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, h["X-Multi"])
	r, err := c.InputStream()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "created", string(b))

	rcv := <-got
	assert.Equal(t, "PUT", rcv.method)
	assert.Equal(t, "payload", rcv.body)
	assert.Equal(t, []string{"1", "2"}, rcv.header["X-Trace"])
	assert.True(t, rcv.close)

	assert.ErrorIs(t, c.SetMethod("GET"), errAlreadySent)
	_, err = c.OutputSink()
	assert.ErrorIs(t, err, errAlreadySent)
}

func TestTransport_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(0), r.ContentLength)
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	var tr Transport
	c, err := tr.Open(context.Background(), server.URL, NoProxy)
	require.NoError(t, err)
	defer c.Close()
	code, err := c.StatusCode()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}

func TestTransport_UnclosedSink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_, _ = w.Write(b)
	}))
	defer server.Close()

	var tr Transport
	c, err := tr.Open(context.Background(), server.URL, NoProxy)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetMethod("POST"))
	w, err := c.OutputSink()
	require.NoError(t, err)
	_, err = io.WriteString(w, "streamed")
	require.NoError(t, err)

	r, err := c.InputStream()
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(b))
}

func TestTransport_Redirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/from" {
			http.Redirect(w, r, "/to", http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, "landed")
	}))
	defer server.Close()

	var tr Transport
	for _, follow := range []bool{true, false} {
		c, err := tr.Open(context.Background(), server.URL+"/from", NoProxy)
		require.NoError(t, err)
		c.SetFollowRedirects(follow)
		code, err := c.StatusCode()
		require.NoError(t, err)
		if follow {
			assert.Equal(t, http.StatusOK, code)
		} else {
			assert.Equal(t, http.StatusFound, code)
		}
		_ = c.Close()
	}
}

func TestTransport_SkipTLSVerify(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	defer server.Close()

	var tr Transport
	t.Run("verified", func(t *testing.T) {
		c, err := tr.Open(context.Background(), server.URL, NoProxy)
		require.NoError(t, err)
		defer c.Close()
		_, err = c.StatusCode()
		assert.Error(t, err, "self-signed certificate must be rejected")
	})
	t.Run("skipped", func(t *testing.T) {
		c, err := tr.Open(context.Background(), server.URL, NoProxy)
		require.NoError(t, err)
		defer c.Close()
		s, ok := c.(InsecureSkipper)
		require.True(t, ok)
		s.SkipTLSVerify()
		code, err := c.StatusCode()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	var tr Transport
	c, err := tr.Open(context.Background(), addr, NoProxy)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetMethod("POST"))
	w, err := c.OutputSink()
	require.NoError(t, err)
	_, _ = io.WriteString(w, "lost")
	_ = w.Close()
	_, err = c.StatusCode()
	assert.Error(t, err)
	_, err = c.InputStream()
	assert.Error(t, err)
}

type mockDoer struct {
	mock.Mock
}

func (m *mockDoer) Do(r *http.Request) (*http.Response, error) {
	args := m.Called(r)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func TestTransport_Doer(t *testing.T) {
	boom := errors.New("boom")
	doer := &mockDoer{}
	doer.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == "DELETE" && r.URL.String() == "http://test:80/x" && r.Close
	})).Return(nil, boom).Once()

	tr := Transport{Doer: doer}
	c, err := tr.Open(context.Background(), "http://test:80/x", NoProxy)
	require.NoError(t, err)
	require.NoError(t, c.SetMethod("DELETE"))
	c.AddHeader("Connection", "close")
	_, err = c.StatusCode()
	assert.Same(t, boom, err)
	assert.NoError(t, c.Close())
	doer.AssertExpectations(t)
}
