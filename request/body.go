// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
)

// StreamBody returns a BodyWriter which hands the output sink to f
// as-is. Unlike the other body writers, it does not close the sink:
// f decides when the body is complete.
func StreamBody(f func(w io.WriteCloser) error) BodyWriter {
	return BodyWriter(f)
}

// TextBody returns a BodyWriter which writes text encoded in the named
// charset and closes the sink. An empty charset means UTF-8.
func TextBody(text, charset string) (BodyWriter, error) {
	return TextFuncBody(func() string { return text }, charset)
}

// TextFuncBody is like TextBody, but the text is produced by f when the
// body is written rather than when the writer is created.
func TextFuncBody(f func() string, charset string) (BodyWriter, error) {
	if charset != "" && !KnownCharset(charset) {
		return nil, fmt.Errorf("httpq/request: unknown charset %q", charset)
	}
	e, _ := LookupCharset(charset)
	return func(w io.WriteCloser) error {
		b, err := e.NewEncoder().Bytes([]byte(f()))
		if err != nil {
			_ = w.Close()
			return err
		}
		return writeAndClose(w, b)
	}, nil
}

// BytesBody returns a BodyWriter which writes the bytes produced by f
// and closes the sink.
func BytesBody(f func() []byte) BodyWriter {
	return func(w io.WriteCloser) error {
		return writeAndClose(w, f())
	}
}

// EncodedBody returns a BodyWriter which runs enc over params and
// closes the sink.
func EncodedBody(enc BodyEncoder, params map[string]string) BodyWriter {
	return func(w io.WriteCloser) error {
		if err := enc(params, w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}
}

func writeAndClose(w io.WriteCloser, b []byte) error {
	_, err := w.Write(b)
	cerr := w.Close()
	if err != nil {
		return err
	}
	return cerr
}
