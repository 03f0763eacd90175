// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport failures as transient or
// non-transient. Retry policies use it to decide whether re-submitting
// a failed attempt has any prospect of success, and it is also handy
// for bucketing error metrics.
//
// The package depends only on the standard library.
package transient
