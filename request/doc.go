// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core value types of httpq: Spec (describes
one HTTP request), Attempt (one try of a Spec), ResponseInfo (metadata
of one response) and Execution (the state of one submission).

A Spec is normally assembled through the fluent builder in package
httpq, but it can also be filled in directly:

	s := request.NewSpec("GET")
	s.Host, s.Port = "example.com", 80
	s.Path = "/search?lang=en"
	s.Params["q"] = "where is"
	u := request.URL(s) // http://example.com:80/search?lang=en&q=where+is

The package also implements the header rules shared by the builder and
the executor: name and value validation, the fixed GMT date format, and
extraction of the content type and charset from response headers.

	ct := request.ContentType(h)    // "text/html"
	cs := request.ContentCharset(h) // "UTF-8"
*/
package request
