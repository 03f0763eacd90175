// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyMode(t *testing.T) {
	assert.Equal(t, "none", NoProxy.String())
	assert.Equal(t, "environment", EnvironmentProxy.String())
	assert.Equal(t, "ProxyMode(7)", ProxyMode(7).String())

	testCases := []struct {
		in   string
		mode ProxyMode
		ok   bool
	}{
		{"", NoProxy, true},
		{"none", NoProxy, true},
		{"Environment", EnvironmentProxy, true},
		{"socks", NoProxy, false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.in, func(t *testing.T) {
			mode, err := ParseProxyMode(testCase.in)
			if testCase.ok {
				require.NoError(t, err)
				assert.Equal(t, testCase.mode, mode)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestOpenerFunc(t *testing.T) {
	boom := errors.New("boom")
	var gotURL string
	var gotProxy ProxyMode
	o := OpenerFunc(func(_ context.Context, rawURL string, proxy ProxyMode) (Connection, error) {
		gotURL, gotProxy = rawURL, proxy
		return nil, boom
	})
	c, err := o.Open(context.Background(), "http://test:80/", EnvironmentProxy)
	assert.Nil(t, c)
	assert.Same(t, boom, err)
	assert.Equal(t, "http://test:80/", gotURL)
	assert.Equal(t, EnvironmentProxy, gotProxy)
}
