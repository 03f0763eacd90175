// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *HeaderFilter
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing to standard output at the named
// level. An unknown level means info. If pretty is true, output is
// formatted for human readability instead of as JSON lines.
func New(level string, pretty bool) *ZeroLogger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter creates a ZeroLogger writing JSON lines to w.
func NewWithWriter(w io.Writer, level string) *ZeroLogger {
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(zLevel).With().Timestamp().Logger()
	return &ZeroLogger{zlog: &l, filter: NewHeaderFilter()}
}

// Nop returns a Logger which discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// Level returns the minimum level the logger writes.
func (l *ZeroLogger) Level() zerolog.Level {
	return l.zlog.GetLevel()
}

// WithFields returns a logger which adds fields to every entry.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	zl := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter}
}

func (l *ZeroLogger) Debug() LogEvent {
	return &eventAdapter{event: l.zlog.Debug(), filter: l.filter}
}

func (l *ZeroLogger) Info() LogEvent {
	return &eventAdapter{event: l.zlog.Info(), filter: l.filter}
}

func (l *ZeroLogger) Warn() LogEvent {
	return &eventAdapter{event: l.zlog.Warn(), filter: l.filter}
}

func (l *ZeroLogger) Error() LogEvent {
	return &eventAdapter{event: l.zlog.Error(), filter: l.filter}
}
