// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// eventAdapter adapts zerolog events to LogEvent. A nil zerolog event,
// returned for disabled levels, is safe to use.
type eventAdapter struct {
	event  *zerolog.Event
	filter *HeaderFilter
}

func (a *eventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *eventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *eventAdapter) Err(err error) LogEvent {
	a.event = a.event.Err(err)
	return a
}

// Str adds a string field. Values of sensitive keys are masked.
func (a *eventAdapter) Str(key, value string) LogEvent {
	if a.filter != nil {
		value = a.filter.Filter(key, value)
	}
	a.event = a.event.Str(key, value)
	return a
}

func (a *eventAdapter) Int(key string, value int) LogEvent {
	a.event = a.event.Int(key, value)
	return a
}

func (a *eventAdapter) Bool(key string, value bool) LogEvent {
	a.event = a.event.Bool(key, value)
	return a
}

func (a *eventAdapter) Dur(key string, d time.Duration) LogEvent {
	a.event = a.event.Dur(key, d)
	return a
}

func (a *eventAdapter) Strs(key string, values []string) LogEvent {
	a.event = a.event.Strs(key, values)
	return a
}
