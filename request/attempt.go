// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// An Attempt pairs a request Spec with a zero-based attempt counter.
// Attempts are values: a retry is a new Attempt produced by Next.
type Attempt struct {
	// Spec is the request to execute. It must not be modified once the
	// attempt has been submitted.
	Spec *Spec

	// N is the zero-based attempt number. It is zero for the initial
	// attempt, one for the first retry, and so on.
	N int
}

// NewAttempt returns the initial attempt for s.
func NewAttempt(s *Spec) Attempt {
	return Attempt{Spec: s}
}

// Next returns the attempt which follows a.
func (a Attempt) Next() Attempt {
	return Attempt{Spec: a.Spec, N: a.N + 1}
}

// Exceeded reports whether the attempt budget of the spec is already
// spent, meaning a must not be executed.
func (a Attempt) Exceeded() bool {
	return a.Spec.MaxAttempts > 0 && a.N >= a.Spec.MaxAttempts
}
