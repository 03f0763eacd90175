// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// URL serializes the target of s into a URL string of the form
// scheme://host:port/path[?query].
//
// Leading slashes of the path collapse into exactly one. A query string
// already present in the path is kept verbatim, and the spec parameters
// are appended after it with the right separator. Parameters are not
// serialized at all for URL-encoded and multipart requests.
func URL(s *Spec) string {
	var b strings.Builder
	b.WriteString(s.Scheme())
	b.WriteString("://")
	b.WriteString(s.Host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(s.Port))
	b.WriteByte('/')
	b.WriteString(strings.TrimLeft(s.Path, "/"))
	if s.URLEncoded || s.MultiPart || len(s.Params) == 0 {
		return b.String()
	}
	b.WriteString(querySeparator(s.Path))
	b.WriteString(EncodeParams(s.Params))
	return b.String()
}

func querySeparator(path string) string {
	switch {
	case strings.HasSuffix(path, "?") || strings.HasSuffix(path, "&"):
		return ""
	case strings.Contains(path, "?"):
		return "&"
	default:
		return "?"
	}
}

// EncodeParams encodes params in application/x-www-form-urlencoded
// form, sorted by key. Each key and value is escaped individually.
func EncodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}
