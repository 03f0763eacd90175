// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gogama/httpq/request"
)

func attemptN(n int) request.Attempt {
	return request.Attempt{Spec: request.NewSpec("GET"), N: n}
}

func withStatus(code int) *request.ResponseInfo {
	return &request.ResponseInfo{StatusCode: code}
}

func TestDefaultDecider(t *testing.T) {
	t.Run("retryable status codes", func(t *testing.T) {
		for _, code := range []int{429, 502, 503, 504} {
			t.Run(fmt.Sprint(code), func(t *testing.T) {
				e := request.Execution{Info: withStatus(code), Err: errors.New("rejected")}
				for n := 0; n < DefaultTimes; n++ {
					e.Attempt = attemptN(n)
					assert.True(t, DefaultDecider.Decide(&e), "attempt %d", n)
				}
				e.Attempt = attemptN(DefaultTimes)
				assert.False(t, DefaultDecider.Decide(&e))
			})
		}
	})
	t.Run("non-retryable status codes", func(t *testing.T) {
		for _, code := range []int{200, 204, 400, 401, 403, 404, 500} {
			t.Run(fmt.Sprint(code), func(t *testing.T) {
				e := request.Execution{Info: withStatus(code), Err: errors.New("rejected")}
				e.Attempt = attemptN(0)
				assert.False(t, DefaultDecider.Decide(&e))
			})
		}
	})
	t.Run("transient errors", func(t *testing.T) {
		for i, err := range transientErrs {
			t.Run(fmt.Sprintf("transientErrs[%d]", i), func(t *testing.T) {
				e := request.Execution{Err: err}
				for n := 0; n < DefaultTimes; n++ {
					e.Attempt = attemptN(n)
					assert.True(t, DefaultDecider.Decide(&e), "attempt %d", n)
				}
				e.Attempt = attemptN(DefaultTimes)
				assert.False(t, DefaultDecider.Decide(&e))
			})
		}
	})
	t.Run("non-transient errors", func(t *testing.T) {
		for i, err := range nonTransientErrs {
			t.Run(fmt.Sprintf("nonTransientErrs[%d]", i), func(t *testing.T) {
				e := request.Execution{Attempt: attemptN(0), Err: err}
				assert.False(t, DefaultDecider.Decide(&e))
			})
		}
	})
}

func TestTimes(t *testing.T) {
	assert.False(t, Times(0).Decide(&request.Execution{Attempt: attemptN(0)}))
	d := Times(2)
	assert.True(t, d(&request.Execution{Attempt: attemptN(0)}))
	assert.True(t, d(&request.Execution{Attempt: attemptN(1)}))
	assert.False(t, d(&request.Execution{Attempt: attemptN(2)}))
}

func TestBefore(t *testing.T) {
	d := Before(time.Hour)
	now := time.Now()
	assert.True(t, d(&request.Execution{Start: now.Add(-time.Minute)}))
	assert.False(t, d(&request.Execution{Start: now.Add(-2 * time.Hour), End: now}))
}

func TestStatusCode(t *testing.T) {
	d := StatusCode(418, 503)
	assert.True(t, d(&request.Execution{Info: withStatus(418)}))
	assert.True(t, d(&request.Execution{Info: withStatus(503)}))
	assert.False(t, d(&request.Execution{Info: withStatus(200)}))
	assert.False(t, d(&request.Execution{}), "no response")
}

func TestDeciderFunc(t *testing.T) {
	yes := DeciderFunc(func(_ *request.Execution) bool { return true })
	no := DeciderFunc(func(_ *request.Execution) bool { return false })
	boom := DeciderFunc(func(_ *request.Execution) bool { panic("evaluated") })
	e := &request.Execution{}

	t.Run("And", func(t *testing.T) {
		assert.True(t, yes.And(yes).Decide(e))
		assert.False(t, yes.And(no).Decide(e))
		assert.NotPanics(t, func() { assert.False(t, no.And(boom).Decide(e)) })
	})
	t.Run("Or", func(t *testing.T) {
		assert.True(t, no.Or(yes).Decide(e))
		assert.False(t, no.Or(no).Decide(e))
		assert.NotPanics(t, func() { assert.True(t, yes.Or(boom).Decide(e)) })
	})
}

var transientErrs = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ETIMEDOUT,
	io.ErrUnexpectedEOF,
	&url.Error{Op: "Get", URL: "http://test:80/", Err: syscall.ECONNRESET},
	fmt.Errorf("wrapped: %w", io.ErrUnexpectedEOF),
}

var nonTransientErrs = []error{
	errors.New("plain"),
	io.EOF,
	syscall.ENOENT,
	&url.Error{Op: "Get", URL: "http://test:80/", Err: errors.New("bad")},
}
