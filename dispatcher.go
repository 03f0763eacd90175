// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gogama/httpq/config"
	"github.com/gogama/httpq/logger"
	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/retry"
	"github.com/gogama/httpq/transport"
)

const (
	// DefaultWorkers is the number of worker goroutines of a Dispatcher
	// created without WithWorkers.
	DefaultWorkers = 8
	// DefaultQueueSize is the backlog capacity of a Dispatcher created
	// without WithQueueSize.
	DefaultQueueSize = 64
)

// A Dispatcher runs request attempts on a fixed pool of worker
// goroutines fed by a bounded queue.
//
// Submitting never blocks: when the queue is full the submission fails
// with a KindQueueFull error. Exactly one worker runs a given attempt,
// and the attempts of one submission never overlap.
//
// By default failed attempts are not retried. Install a retry policy
// with WithRetryPolicy to re-submit failures; each re-submission goes
// through the same admission checks as a new submission, so the
// MaxAttempts of a request still caps it.
//
// A Dispatcher is safe for concurrent use by multiple goroutines. Call
// Close to stop it.
type Dispatcher struct {
	opener   transport.Opener
	proxy    transport.ProxyMode
	policy   retry.Policy
	handlers *HandlerGroup
	logger   logger.Logger
	limiter  *rate.Limiter
	workers  int

	queue  chan task
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// An Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the number of worker goroutines. Values below one
// are ignored.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize sets the capacity of the pending-submission backlog.
// Zero means a submission is only accepted if a worker is idle.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.queue = make(chan task, n)
		}
	}
}

// WithOpener sets the transport used to open connections. The default
// is a zero-value transport.Transport.
func WithOpener(o transport.Opener) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.opener = o
		}
	}
}

// WithProxyMode sets the proxy mode passed to the opener.
func WithProxyMode(m transport.ProxyMode) Option {
	return func(d *Dispatcher) {
		d.proxy = m
	}
}

// WithRetryPolicy sets the retry policy. The default, retry.Never,
// does not retry.
func WithRetryPolicy(p retry.Policy) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.policy = p
		}
	}
}

// WithHandlers installs event handlers.
func WithHandlers(g *HandlerGroup) Option {
	return func(d *Dispatcher) {
		d.handlers = g
	}
}

// WithLogger sets the logger used for the dispatcher's own
// diagnostics. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRateLimit limits the rate at which attempts start to limit per
// second, with bursts of up to burst attempts. A non-positive limit
// means no limit.
func WithRateLimit(limit float64, burst int) Option {
	return func(d *Dispatcher) {
		if limit <= 0 {
			d.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// NewDispatcher creates a Dispatcher and starts its workers.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		opener:  &transport.Transport{},
		policy:  retry.Never,
		logger:  logger.Nop(),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.queue == nil {
		d.queue = make(chan task, DefaultQueueSize)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.group = new(errgroup.Group)
	for i := 0; i < d.workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

// Close stops accepting submissions, lets the workers drain the queue
// and waits for them to exit. Retries still waiting when Close is
// called fail with a KindClosed error.
//
// If ctx is done before the workers exit, the attempts still running
// are abandoned and ctx.Err() is returned. Calling Close again is
// harmless.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- d.group.Wait()
	}()
	select {
	case err := <-done:
		d.cancel()
		return err
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

func (d *Dispatcher) work() error {
	for t := range d.queue {
		d.run(t)
	}
	return nil
}

// Submit submits the attempt a and returns the future of its result.
// It is the primitive behind Builder.Send, exposed for callers which
// manage attempts themselves.
//
// A nil transform drains the response body and yields the zero value
// of T. A nil onError is ignored. An attempt whose spec is missing or
// fails validation is never queued: the future fails at once with a
// KindInvalidArgument error and no handler runs.
func Submit[T any](d *Dispatcher, a request.Attempt, transform Transform[T], onError ErrorHandler) *Future[T] {
	if a.Spec == nil {
		return failedFuture[T](&Error{Kind: KindInvalidArgument, Op: "submit", Err: errNoSpec})
	}
	if err := a.Spec.Validate(); err != nil {
		return failedFuture[T](&Error{Kind: KindInvalidArgument, Op: "submit", Err: err})
	}
	if transform == nil {
		transform = discard[T]
	}
	c := &call[T]{
		exec:      request.NewExecution(a),
		transform: transform,
		onError:   onError,
		future:    newFuture[T](),
	}
	d.handlers.run(BeforeExecutionStart, c.exec)
	c.exec.Start = time.Now()
	d.submit(c)
	return c.future
}

// submit admits t to the queue, or fails it.
func (d *Dispatcher) submit(t task) {
	e := t.execution()
	if e.Attempt.Exceeded() {
		d.reject(t, &Error{Kind: KindAttemptsExceeded, Op: "submit", URL: e.URL, Err: lastFailure(e)})
		return
	}

	kind := KindQueueFull
	d.mu.RLock()
	if d.closed {
		kind = KindClosed
	} else {
		select {
		case d.queue <- t:
			d.mu.RUnlock()
			return
		default:
		}
	}
	d.mu.RUnlock()
	d.reject(t, &Error{Kind: kind, Op: "submit", URL: e.URL, Err: lastFailure(e)})
}

func (d *Dispatcher) reject(t task, err *Error) {
	e := t.execution()
	if !t.begin() {
		d.end(e)
		return
	}
	d.logger.Debug().
		Str("id", e.ID).
		Str("url", e.URL).
		Int("attempt", e.Attempt.N).
		Str("kind", err.Kind.String()).
		Msg("submission rejected")
	d.fail(t, err)
}

func lastFailure(e *request.Execution) error {
	if n := len(e.Failures); n > 0 {
		return e.Failures[n-1]
	}
	return nil
}

// run executes one attempt on the calling worker goroutine.
func (d *Dispatcher) run(t task) {
	e := t.execution()
	if !t.begin() {
		d.end(e)
		return
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.fail(t, &Error{Kind: KindClosed, Op: "wait", URL: e.URL, Err: err})
			return
		}
	}

	e.URL = request.URL(e.Attempt.Spec)
	e.Info = nil
	e.Err = nil
	d.handlers.run(BeforeAttempt, e)
	e.Err = t.attempt(d.ctx, d)
	if e.Err != nil {
		e.Failures = append(e.Failures, e.Err)
	}
	d.handlers.run(AfterAttempt, e)

	switch {
	case e.Err == nil:
		e.End = time.Now()
		t.succeed()
		d.handlers.run(AfterExecutionEnd, e)
	case d.policy.Decide(e):
		d.retry(t)
	default:
		d.fail(t, e.Err)
	}
}

func (d *Dispatcher) retry(t task) {
	e := t.execution()
	wait := d.policy.Wait(e)
	d.handlers.run(BeforeRetry, e)
	d.logger.Debug().
		Str("id", e.ID).
		Str("url", e.URL).
		Int("attempt", e.Attempt.N).
		Dur("wait", wait).
		Err(e.Err).
		Msg("retrying failed attempt")
	e.Attempt = e.Attempt.Next()
	t.pause()
	if wait <= 0 {
		d.submit(t)
		return
	}
	time.AfterFunc(wait, func() {
		d.submit(t)
	})
}

// fail resolves t with err. The future must be running. The error
// handler sees the failures of every attempt which ran, before the
// future resolves; it is not called if no attempt ran.
func (d *Dispatcher) fail(t task, err error) {
	e := t.execution()
	if !e.Ended() {
		e.End = time.Now()
	}
	d.logger.Warn().
		Str("id", e.ID).
		Str("url", e.URL).
		Int("attempts", len(e.Failures)).
		Err(err).
		Msg("request failed")
	if len(e.Failures) > 0 {
		d.handleError(t, e.Failures)
	}
	t.fail(err)
	d.handlers.run(AfterExecutionEnd, e)
}

func (d *Dispatcher) handleError(t task, failures []error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("panic", panicString(r)).Msg("error handler panicked")
		}
	}()
	t.handleError(failures)
}

func (d *Dispatcher) end(e *request.Execution) {
	if !e.Ended() {
		e.End = time.Now()
	}
	d.handlers.run(AfterExecutionEnd, e)
}

// NewDispatcherFromConfig creates a Dispatcher whose worker pool,
// transport and logger follow cfg. Further options are applied after
// those derived from cfg.
func NewDispatcherFromConfig(cfg *config.Config, opts ...Option) (*Dispatcher, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Op: "config", Err: err}
	}
	proxy, err := transport.ParseProxyMode(cfg.Transport.Proxy)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Op: "config", Err: err}
	}
	base := []Option{
		WithWorkers(cfg.Dispatcher.Workers),
		WithQueueSize(cfg.Dispatcher.Queue),
		WithRateLimit(cfg.Dispatcher.Rate.Limit, cfg.Dispatcher.Rate.Burst),
		WithProxyMode(proxy),
		WithOpener(&transport.Transport{
			ConnectTimeout: cfg.Transport.Timeout.Connect,
			ReadTimeout:    cfg.Transport.Timeout.Read,
		}),
		WithLogger(logger.New(cfg.Log.Level, cfg.Log.Pretty)),
	}
	return NewDispatcher(append(base, opts...)...), nil
}
