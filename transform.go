// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"io"

	"github.com/gogama/httpq/request"
)

// OnSuccess rebinds b to a result of type V produced by f from the raw
// response body. Any previous transform is replaced.
func OnSuccess[T, V any](b *Builder[T], f func(info request.ResponseInfo, body io.Reader) (V, error)) *Builder[V] {
	b2 := rebind[T, V](b)
	if b2.err != nil {
		return b2
	}
	if f == nil {
		return b2.fail(invalidArgument("onSuccess", "nil transform"))
	}
	b2.transform = f
	return b2
}

// OnSuccessAsText is like OnSuccess, but f receives the whole body
// decoded to a string from the charset the response declares. UTF-8 is
// assumed if the charset is absent or not recognized.
func OnSuccessAsText[T, V any](b *Builder[T], f func(info request.ResponseInfo, text string) (V, error)) *Builder[V] {
	if f == nil {
		return OnSuccess[T, V](b, nil)
	}
	return OnSuccess(b, func(info request.ResponseInfo, body io.Reader) (V, error) {
		p, err := io.ReadAll(info.Decode(body))
		if err != nil {
			var zero V
			return zero, err
		}
		return f(info, string(p))
	})
}

// OnSuccessAsBytes is like OnSuccess, but f receives the whole body,
// read into memory.
func OnSuccessAsBytes[T, V any](b *Builder[T], f func(info request.ResponseInfo, body []byte) (V, error)) *Builder[V] {
	if f == nil {
		return OnSuccess[T, V](b, nil)
	}
	return OnSuccess(b, func(info request.ResponseInfo, body io.Reader) (V, error) {
		p, err := io.ReadAll(body)
		if err != nil {
			var zero V
			return zero, err
		}
		return f(info, p)
	})
}

// WithTextResponse rebinds b to a result holding the decoded body
// text.
func WithTextResponse[T any](b *Builder[T]) *Builder[string] {
	return OnSuccessAsText(b, func(_ request.ResponseInfo, text string) (string, error) {
		return text, nil
	})
}

// WithBytesResponse rebinds b to a result holding the raw body bytes.
func WithBytesResponse[T any](b *Builder[T]) *Builder[[]byte] {
	return OnSuccessAsBytes(b, func(_ request.ResponseInfo, body []byte) ([]byte, error) {
		return body, nil
	})
}

func rebind[T, V any](b *Builder[T]) *Builder[V] {
	return &Builder[V]{
		d:       b.d,
		spec:    b.spec,
		onError: b.onError,
		err:     b.err,
	}
}
