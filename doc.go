// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpq provides a fluent HTTP request builder whose requests run
asynchronously on a bounded pool of workers.

Create a Dispatcher, then build and send requests through it. Sending
never blocks; it returns a Future.

	d := httpq.NewDispatcher(httpq.WithWorkers(4), httpq.WithQueueSize(100))
	defer d.Close(context.Background())

	f := httpq.WithTextResponse(
		httpq.Get(d).
			WithHost("example.com", 80).
			WithPath("/search").
			WithParam("q", "go modules").
			WithHeader("Accept", "text/plain"),
	).Send()
	text, err := f.Await(ctx)

A request starts as a Draft, which only accepts a host. Setting the host
yields a Builder whose methods chain. The first invalid argument stops
the chain: Err reports it at once and Send returns a future which has
already failed, so nothing invalid is ever submitted.

The result type of a request is chosen by its transform. OnSuccess,
OnSuccessAsText and OnSuccessAsBytes rebind a Builder to a new result
type; WithTextResponse and WithBytesResponse are shortcuts for the
plain body. Text is decoded from the charset the response declares,
falling back to UTF-8.

	type user struct{ Name string }
	f := httpq.OnSuccessAsBytes(httpq.Get(d).WithHostPort("api.internal:8080").WithPath("/users/7"),
		func(_ request.ResponseInfo, body []byte) (user, error) {
			var u user
			err := json.Unmarshal(body, &u)
			return u, err
		}).
		OnError(func(failures []error) { log.Println(failures) }).
		Send()

Failed attempts are not retried unless the dispatcher has a retry
policy from package retry:

	d := httpq.NewDispatcher(httpq.WithRetryPolicy(retry.DefaultPolicy))

Each retry is submitted again like a new attempt, so the limit set with
WithRetries still applies.

To hook into the execution of requests, install handlers into the
appropriate handler chain. InstallLogging adds structured logging and
package instrument adds OpenTelemetry tracing and metrics:

	handlers := &httpq.HandlerGroup{}
	httpq.InstallLogging(handlers, logger.New("info", false))
	handlers.PushBack(httpq.AfterAttempt, httpq.HandlerFunc(
		func(_ httpq.Event, e *request.Execution) {
			fmt.Printf("attempt %d to %s: %v\n", e.Attempt.N, e.URL, e.Err)
		}),
	)
	d := httpq.NewDispatcher(httpq.WithHandlers(handlers))

The bytes are moved by a transport.Opener; by default a
transport.Transport built on net/http. Tests replace it with
WithOpener.
*/
package httpq
