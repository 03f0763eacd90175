// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package instrument provides OpenTelemetry tracing and metrics for a
// dispatcher, as an event handler.
//
// One client span is started per attempt and ended when the attempt
// concludes. Each attempt is also counted and timed.
package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/httpq"
	"github.com/gogama/httpq/request"
)

// ScopeName is the instrumentation scope of the tracer and meter.
const ScopeName = "github.com/gogama/httpq"

const (
	metricAttempts       = "httpq.client.attempts"
	metricActiveAttempts = "httpq.client.active_attempts"
	metricDuration       = "http.client.request.duration"

	attrMethod     = "http.request.method"
	attrStatusCode = "http.response.status_code"
	attrURL        = "url.full"
	attrAttempt    = "httpq.attempt"
	attrExecution  = "httpq.execution.id"
	attrOutcome    = "httpq.outcome"
	attrErrorType  = "error.type"
)

var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

type attemptKey struct{}

type attemptState struct {
	span  trace.Span
	start time.Time
}

// An Instrument records traces and metrics for request attempts.
type Instrument struct {
	tracer   trace.Tracer
	attempts metric.Int64Counter
	active   metric.Int64UpDownCounter
	duration metric.Float64Histogram
}

// New creates an Instrument using the given providers.
func New(tp trace.TracerProvider, mp metric.MeterProvider) (*Instrument, error) {
	meter := mp.Meter(ScopeName)
	in := &Instrument{tracer: tp.Tracer(ScopeName)}
	var err error
	if in.attempts, err = meter.Int64Counter(metricAttempts,
		metric.WithDescription("Number of concluded request attempts"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}
	if in.active, err = meter.Int64UpDownCounter(metricActiveAttempts,
		metric.WithDescription("Number of request attempts in progress"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}
	if in.duration, err = meter.Float64Histogram(metricDuration,
		metric.WithDescription("Duration of request attempts"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	return in, nil
}

// Install pushes the Instrument onto g for the attempt events.
func (in *Instrument) Install(g *httpq.HandlerGroup) {
	g.PushBack(httpq.BeforeAttempt, in)
	g.PushBack(httpq.AfterAttempt, in)
}

// Handle starts a span on BeforeAttempt and ends it, recording
// metrics, on AfterAttempt. Other events are ignored.
func (in *Instrument) Handle(evt httpq.Event, e *request.Execution) {
	switch evt {
	case httpq.BeforeAttempt:
		in.begin(e)
	case httpq.AfterAttempt:
		in.end(e)
	}
}

func (in *Instrument) begin(e *request.Execution) {
	method := e.Attempt.Spec.Method
	_, span := in.tracer.Start(context.Background(), "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrMethod, method),
			attribute.String(attrURL, e.URL),
			attribute.Int(attrAttempt, e.Attempt.N),
			attribute.String(attrExecution, e.ID),
		),
	)
	e.SetValue(attemptKey{}, &attemptState{span: span, start: time.Now()})
	in.active.Add(context.Background(), 1, metric.WithAttributes(attribute.String(attrMethod, method)))
}

func (in *Instrument) end(e *request.Execution) {
	st, ok := e.Value(attemptKey{}).(*attemptState)
	if !ok || st == nil {
		return
	}
	e.SetValue(attemptKey{}, (*attemptState)(nil))

	ctx := context.Background()
	method := e.Attempt.Spec.Method
	attrs := []attribute.KeyValue{attribute.String(attrMethod, method)}
	if code := e.StatusCode(); code != 0 {
		attrs = append(attrs, attribute.Int(attrStatusCode, code))
		st.span.SetAttributes(attribute.Int(attrStatusCode, code))
	}
	if e.Err != nil {
		kind := errorType(e.Err)
		attrs = append(attrs, attribute.String(attrErrorType, kind))
		st.span.RecordError(e.Err)
		st.span.SetStatus(codes.Error, kind)
	}
	st.span.End()

	in.active.Add(ctx, -1, metric.WithAttributes(attribute.String(attrMethod, method)))
	in.duration.Record(ctx, time.Since(st.start).Seconds(), metric.WithAttributes(attrs...))
	in.attempts.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String(attrOutcome, outcome(e)))...))
}

func outcome(e *request.Execution) string {
	if e.Err == nil {
		return "success"
	}
	return "failure"
}

func errorType(err error) string {
	for k := httpq.KindInvalidArgument; k <= httpq.KindUnsupported; k++ {
		if httpq.IsKind(err, k) {
			return k.String()
		}
	}
	return "_OTHER"
}
