// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	hostPattern        = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)
	hostPortPattern    = regexp.MustCompile(`^([A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*):([0-9]+)$`)
	headerNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	headerValuePattern = regexp.MustCompile(`^[A-Za-z0-9_+;#,. %:/=-]+$`)
)

// MaxPort is the largest valid TCP port.
const MaxPort = 65535

// ValidHost reports whether host is a dot-separated sequence of labels
// made of letters, digits, underscores and hyphens.
func ValidHost(host string) bool {
	return hostPattern.MatchString(host)
}

// ValidPort reports whether port is in the range 0-65535.
func ValidPort(port int) bool {
	return port >= 0 && port <= MaxPort
}

// ValidHeaderName reports whether name may be used as a request header
// or parameter name.
func ValidHeaderName(name string) bool {
	return headerNamePattern.MatchString(name)
}

// ValidHeaderValue reports whether value only contains characters from
// the restricted printable ASCII set allowed in request header values.
func ValidHeaderValue(value string) bool {
	return headerValuePattern.MatchString(value)
}

// ParseHostPort splits a "host:port" string. The port must be a decimal
// number between 1 and 65535.
func ParseHostPort(hostPort string) (host string, port int, err error) {
	m := hostPortPattern.FindStringSubmatch(hostPort)
	if m == nil {
		return "", 0, fmt.Errorf("httpq/request: bad host port spec %q", hostPort)
	}
	port, err = strconv.Atoi(m[len(m)-1])
	if err != nil || port == 0 || port > MaxPort {
		return "", 0, fmt.Errorf("httpq/request: bad port in %q", hostPort)
	}
	return m[1], port, nil
}
