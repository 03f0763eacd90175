// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"github.com/gogama/httpq/logger"
	"github.com/gogama/httpq/request"
)

// LoggingHandler is a Handler which writes one structured log entry per
// event it handles. Install it with InstallLogging, or push it for the
// events of interest.
type LoggingHandler struct {
	Logger logger.Logger
}

// InstallLogging pushes a LoggingHandler for l onto g, for the attempt,
// retry and execution end events.
func InstallLogging(g *HandlerGroup, l logger.Logger) {
	h := &LoggingHandler{Logger: l}
	g.PushBack(BeforeAttempt, h)
	g.PushBack(AfterAttempt, h)
	g.PushBack(BeforeRetry, h)
	g.PushBack(AfterExecutionEnd, h)
}

// Handle logs evt. Failed attempts are logged at warn level, other
// events at debug or info level. Request headers are only logged at
// debug level, each under a logger.HeaderPrefix key with credentials
// masked.
func (h *LoggingHandler) Handle(evt Event, e *request.Execution) {
	switch evt {
	case BeforeAttempt:
		ev := h.Logger.Debug().
			Str("id", e.ID).
			Str("method", e.Attempt.Spec.Method).
			Str("url", e.URL).
			Int("attempt", e.Attempt.N)
		for _, name := range sortedKeys(e.Attempt.Spec.Headers) {
			ev = ev.Str(logger.HeaderPrefix+name, e.Attempt.Spec.Headers[name])
		}
		ev.Msg("attempt starting")
	case AfterAttempt:
		if e.Err != nil {
			h.Logger.Warn().
				Str("id", e.ID).
				Str("url", e.URL).
				Int("attempt", e.Attempt.N).
				Int("status", e.StatusCode()).
				Err(e.Err).
				Msg("attempt failed")
			return
		}
		h.Logger.Debug().
			Str("id", e.ID).
			Str("url", e.URL).
			Int("attempt", e.Attempt.N).
			Int("status", e.StatusCode()).
			Msg("attempt succeeded")
	case BeforeRetry:
		h.Logger.Info().
			Str("id", e.ID).
			Str("url", e.URL).
			Int("attempt", e.Attempt.N).
			Msg("retrying")
	case AfterExecutionEnd:
		h.Logger.Info().
			Str("id", e.ID).
			Str("url", e.URL).
			Int("attempts", e.Attempt.N+1).
			Int("failures", len(e.Failures)).
			Bool("success", e.Err == nil && e.Info != nil).
			Dur("duration", e.Duration()).
			Msg("execution ended")
	default:
		h.Logger.Debug().Str("id", e.ID).Str("event", evt.Name()).Msg("event")
	}
}
