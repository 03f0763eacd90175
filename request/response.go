// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCharset is the charset assumed when a response declares none,
// or declares one which is not recognized.
const DefaultCharset = "utf-8"

// ResponseInfo holds the metadata of one HTTP response. It is produced
// once per attempt, handed to the result transform, and then discarded.
type ResponseInfo struct {
	// StatusCode is the HTTP status code, e.g. 200.
	StatusCode int

	// Status is the status message which accompanied the code, e.g.
	// "OK". It is empty if the server sent none.
	Status string

	// Header contains the response headers. A header received several
	// times holds its values in the order received.
	Header map[string][]string

	// ContentType is the MIME type of the body with parameters
	// stripped, or "" if not declared.
	ContentType string

	// Charset is the charset name declared for the body, exactly as
	// sent, or "" if not declared.
	Charset string
}

// NewResponseInfo builds a ResponseInfo, extracting the content type
// and charset from header.
func NewResponseInfo(statusCode int, status string, header map[string][]string) ResponseInfo {
	return ResponseInfo{
		StatusCode:  statusCode,
		Status:      status,
		Header:      header,
		ContentType: ContentType(header),
		Charset:     ContentCharset(header),
	}
}

// Success reports whether the status code is in the 2XX range.
func (ri ResponseInfo) Success() bool {
	return ri.StatusCode >= 200 && ri.StatusCode < 300
}

// Encoding returns the text encoding of the body and its canonical
// name. UTF-8 is returned when the charset is absent or unknown.
func (ri ResponseInfo) Encoding() (encoding.Encoding, string) {
	return LookupCharset(ri.Charset)
}

// Decode wraps r so that it yields the body decoded from its declared
// charset into UTF-8.
func (ri ResponseInfo) Decode(r io.Reader) io.Reader {
	e, _ := ri.Encoding()
	return e.NewDecoder().Reader(r)
}

// LookupCharset resolves a charset label using the WHATWG encoding
// names. UTF-8 is returned for an empty or unknown label.
func LookupCharset(label string) (encoding.Encoding, string) {
	if label = strings.TrimSpace(label); label != "" {
		if e, name := charset.Lookup(label); e != nil {
			return e, name
		}
	}
	return unicode.UTF8, DefaultCharset
}

// KnownCharset reports whether label names a recognized charset.
func KnownCharset(label string) bool {
	e, _ := charset.Lookup(strings.TrimSpace(label))
	return e != nil
}
