// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import "strings"

// Masked replaces the value of a sensitive field.
const Masked = "[MASKED]"

// HeaderPrefix namespaces request header fields so that a header can
// never collide with another field of the same log event.
const HeaderPrefix = "header."

// DefaultSensitiveKeys lists the field names, matched
// case-insensitively, whose values are never logged.
var DefaultSensitiveKeys = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
	"password",
	"token",
}

// A HeaderFilter masks the values of sensitive log fields, typically
// credentials carried in request headers.
type HeaderFilter struct {
	keys map[string]struct{}
}

// NewHeaderFilter returns a filter for DefaultSensitiveKeys plus extra.
func NewHeaderFilter(extra ...string) *HeaderFilter {
	f := &HeaderFilter{keys: make(map[string]struct{})}
	for _, k := range DefaultSensitiveKeys {
		f.keys[strings.ToLower(k)] = struct{}{}
	}
	for _, k := range extra {
		f.keys[strings.ToLower(k)] = struct{}{}
	}
	return f
}

// Sensitive reports whether key names a sensitive field. A leading
// HeaderPrefix is ignored.
func (f *HeaderFilter) Sensitive(key string) bool {
	_, ok := f.keys[strings.TrimPrefix(strings.ToLower(key), HeaderPrefix)]
	return ok
}

// Filter returns Masked if key is sensitive and value is not empty,
// otherwise value.
func (f *HeaderFilter) Filter(key, value string) string {
	if value != "" && f.Sensitive(key) {
		return Masked
	}
	return value
}
