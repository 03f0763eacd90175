// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpq/request"
)

// A Policy controls if and how failed attempts are re-submitted. After
// every failed attempt, the dispatcher asks the Policy whether a retry
// should be done and, if so, how long to wait before re-submitting.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

// Never is a policy that never retries. It is the dispatcher default.
var Never Policy = policy{Times(0), NewFixedWaiter(0)}

// DefaultPolicy is a general-purpose opt-in retry policy. It is a
// composition of DefaultDecider for retry decisions and DefaultWaiter
// for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("httpq/retry: nil decider")
	}
	if w == nil {
		panic("httpq/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
