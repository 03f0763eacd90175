// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides pluggable policies deciding whether a failed
// attempt is re-submitted to the dispatcher, and how long to wait first.
//
// The dispatcher never retries on its own: its default policy is Never.
// Retrying is opted into by installing a Policy built with NewPolicy
// from a decision-maker, Decider, and a wait time calculator, Waiter:
//
//	decider := retry.Times(3).
//		And(retry.Before(5 * time.Second)).
//		And(retry.StatusCode(503).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	d := httpq.NewDispatcher(httpq.WithRetryPolicy(retry.NewPolicy(decider, waiter)))
//
// A re-submitted attempt goes through the same admission check as any
// other, so the per-request attempt limit set with WithRetries caps the
// total number of attempts no matter what the policy decides.
package retry
