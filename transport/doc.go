// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the collaborator which moves bytes between the
dispatcher and an HTTP server, together with a default implementation
built on net/http.

An Opener opens one Connection per request attempt. The attempt executor
configures the connection (method, redirects, headers), optionally
writes a request body into its output sink, then reads the status,
headers and body stream. A Connection is used by one goroutine only and
is always closed by the executor.

Tests typically replace the default Transport with an OpenerFunc which
returns a scripted Connection, so no network is needed.
*/
package transport
