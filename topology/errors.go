// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// errors.go - sentinel errors for the topology package.
//
// Error policy:
//   • Only sentinel variables are exposed; callers branch with errors.Is.
//   • Strategies attach context with %w: "<Method>: <detail>: <sentinel>".
//   • Strategies MUST NOT panic; option constructors may.

package topology

import (
	"errors"
	"fmt"
)

// ErrTooFewSites indicates a size parameter (n, rows, cols, width) below the
// minimum of the requested strategy.
var ErrTooFewSites = errors.New("topology: parameter too small")

// ErrTooManyNeighbors indicates a site whose neighbor list would exceed the
// configured degree cap (MaxNeighbors unless lowered by WithMaxDegree).
var ErrTooManyNeighbors = errors.New("topology: too many neighbors")

// ErrBadNeighbor indicates a neighbor id that is out of range, refers to the
// site itself, or repeats within one list.
var ErrBadNeighbor = errors.New("topology: invalid neighbor")

// ErrUnknownSite indicates a lookup of an id outside 1..N.
var ErrUnknownSite = errors.New("topology: unknown site")

// ErrConstructFailed indicates that construction could not produce a table
// (nil constructor, no sites).
var ErrConstructFailed = errors.New("topology: construction failed")

// topologyErrorf prefixes a formatted message with the method name and wraps
// the sentinel so errors.Is keeps working.
func topologyErrorf(method string, sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s: %w", method, fmt.Sprintf(format, args...), sentinel)
}
