// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ContentTypeHeader is the name of the response header from which the
// content type and charset are extracted.
const ContentTypeHeader = "Content-Type"

var (
	mimeTokenPattern = regexp.MustCompile(`^([^\s;]+)`)
	parameterPattern = regexp.MustCompile(`[A-Za-z0-9_-]+=`)
	charsetPattern   = regexp.MustCompile(`charset=([^\s;]+)`)
)

// FormatDate formats t in the fixed RFC 1123 form used for date-valued
// headers and parameters, e.g. "Mon, 02 Jan 2006 15:04:05 GMT". The
// result is always in GMT and never depends on the local time zone.
func FormatDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// FormatInt formats an integer header or parameter value.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat formats a floating-point header or parameter value using
// the shortest representation which round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBool formats a boolean header or parameter value.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ContentType returns the MIME type declared by the Content-Type
// headers, with parameters stripped, or "" if there is none.
//
// Every Content-Type value is considered, and the last usable MIME type
// wins. A value whose leading token is itself a parameter, such as a
// dangling "charset=UTF-8", declares no MIME type.
func ContentType(header map[string][]string) string {
	var ct string
	for _, v := range contentTypeValues(header) {
		m := mimeTokenPattern.FindStringSubmatch(v)
		if m == nil || m[1] == "" || parameterPattern.MatchString(m[1]) {
			continue
		}
		ct = m[1]
	}
	return ct
}

// ContentCharset returns the charset parameter declared by the
// Content-Type headers, or "" if there is none.
//
// All charset parameters across all Content-Type values are considered
// and the last one wins. Matching single or double quotes around the
// name are removed; the case of the name is preserved.
func ContentCharset(header map[string][]string) string {
	var cs string
	for _, v := range contentTypeValues(header) {
		if !strings.Contains(v, "charset=") {
			continue
		}
		for _, m := range charsetPattern.FindAllStringSubmatch(v, -1) {
			cs = unquote(m[1])
		}
	}
	return cs
}

func contentTypeValues(header map[string][]string) []string {
	var keys []string
	for k := range header {
		if strings.EqualFold(k, ContentTypeHeader) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var values []string
	for _, k := range keys {
		values = append(values, header[k]...)
	}
	return values
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
