// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func contentType(values ...string) map[string][]string {
	return map[string][]string{"Content-Type": values}
}

func TestContentCharset(t *testing.T) {
	testCases := []struct {
		header  map[string][]string
		charset string
	}{
		{contentType("text/html; charset=UTF-8"), "UTF-8"},
		{contentType("text/html; charset=UTF-8 "), "UTF-8"},
		{contentType("text/html; charset='UTF-8'"), "UTF-8"},
		{contentType(`text/html; charset="UTF-8"`), "UTF-8"},
		{contentType("charset=UTF-8"), "UTF-8"},
		{contentType("charset=UTF-8;charset=UTF-9"), "UTF-9"},
		{contentType("charset=UTF-8", "charset=UTF-9"), "UTF-9"},
		{contentType("charset=UTF-8", "text/html; charset=UTF-9"), "UTF-9"},
		{contentType("text/html; charset=windows-1251"), "windows-1251"},
		{contentType("text/html"), ""},
		{map[string][]string{"content-type": {"text/plain; charset=koi8-r"}}, "koi8-r"},
		{nil, ""},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.charset, ContentCharset(testCase.header), "%v", testCase.header)
	}
}

func TestContentType(t *testing.T) {
	testCases := []struct {
		header      map[string][]string
		contentType string
	}{
		{contentType("text/html; charset=UTF-8"), "text/html"},
		{contentType("text/html;charset=UTF-8"), "text/html"},
		{contentType("text/xml+svg;charset=UTF-8"), "text/xml+svg"},
		{contentType("text/html ; charset=UTF-8"), "text/html"},
		{contentType("charset=UTF-8"), ""},
		{contentType("text/plain", "application/json"), "application/json"},
		{contentType("text/plain", "charset=UTF-8"), "text/plain"},
		{map[string][]string{"CONTENT-TYPE": {"image/png"}}, "image/png"},
		{map[string][]string{"X-Other": {"text/html"}}, ""},
		{nil, ""},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.contentType, ContentType(testCase.header), "%v", testCase.header)
	}
}

func TestFormatDate(t *testing.T) {
	want := "Thu, 15 Oct 2026 10:30:00 GMT"
	utc := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, want, FormatDate(utc))
	for _, offset := range []int{-8, -3, 0, 5, 14} {
		loc := time.FixedZone("zone", offset*3600)
		assert.Equal(t, want, FormatDate(utc.In(loc)), "offset %d", offset)
	}
	assert.True(t, ValidHeaderValue(FormatDate(utc)))
}

func TestFormatScalars(t *testing.T) {
	assert.Equal(t, "-42", FormatInt(-42))
	assert.Equal(t, "1.5", FormatFloat(1.5))
	assert.Equal(t, "100", FormatFloat(100))
	assert.Equal(t, "true", FormatBool(true))
	assert.Equal(t, "false", FormatBool(false))
}
