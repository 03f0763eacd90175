// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSpec() *Spec {
	s := NewSpec("POST")
	s.Host = "localhost"
	s.Port = 8080
	return s
}

func TestNewSpec(t *testing.T) {
	s := NewSpec("")
	assert.Equal(t, "GET", s.Method)
	assert.Equal(t, "/", s.Path)
	assert.NotNil(t, s.Headers)
	assert.NotNil(t, s.Params)
	assert.Equal(t, "http", s.Scheme())
	s.HTTPS = true
	assert.Equal(t, "https", s.Scheme())
}

func TestSpec_Clone(t *testing.T) {
	s := validSpec()
	s.Headers["A"] = "1"
	s.Params["p"] = "v"
	c := s.Clone()
	c.Headers["A"] = "2"
	c.Params["q"] = "w"
	c.Host = "other"
	assert.Equal(t, "1", s.Headers["A"])
	assert.NotContains(t, s.Params, "q")
	assert.Equal(t, "localhost", s.Host)
}

func TestSpec_Validate(t *testing.T) {
	assert.NoError(t, validSpec().Validate())

	testCases := []struct {
		name   string
		mutate func(s *Spec)
	}{
		{"bad method", func(s *Spec) { s.Method = "GE T" }},
		{"no host", func(s *Spec) { s.Host = "" }},
		{"bad host", func(s *Spec) { s.Host = "a..b" }},
		{"negative port", func(s *Spec) { s.Port = -1 }},
		{"port too large", func(s *Spec) { s.Port = 70000 }},
		{"bad header name", func(s *Spec) { s.Headers["X Y"] = "v" }},
		{"bad header value", func(s *Spec) { s.Headers["X"] = "v\r\n" }},
		{"negative attempts", func(s *Spec) { s.MaxAttempts = -1 }},
		{"urlencoded multipart", func(s *Spec) { s.URLEncoded, s.MultiPart = true, true }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s := validSpec()
			testCase.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidMethod(t *testing.T) {
	for _, m := range []string{"", "GET", "PROPFIND", "M-SEARCH"} {
		assert.True(t, ValidMethod(m), m)
	}
	for _, m := range []string{"GE T", "GET\n", "(GET)"} {
		assert.False(t, ValidMethod(m), m)
	}
}

func TestAttempt(t *testing.T) {
	s := validSpec()
	a := NewAttempt(s)
	assert.Equal(t, 0, a.N)
	assert.False(t, a.Exceeded(), "unlimited")

	s.MaxAttempts = 2
	assert.False(t, a.Exceeded())
	a = a.Next()
	assert.Equal(t, 1, a.N)
	assert.Same(t, s, a.Spec)
	assert.False(t, a.Exceeded())
	a = a.Next()
	assert.True(t, a.Exceeded())
}
