// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// options.go - functional options for the topology package.
//
// Contract:
//   • Options are functional (type Option func(*tableConfig)).
//   • Option constructors VALIDATE and PANIC on meaningless inputs.
//     Strategies themselves MUST NOT panic.

package topology

import "fmt"

// Option customizes table construction.
type Option func(*tableConfig)

// WithBoundary selects clamped or periodic grid edges.
// Panics on an unknown Boundary value.
func WithBoundary(b Boundary) Option {
	if b != Clamped && b != Periodic {
		panic(fmt.Sprintf("topology: WithBoundary(%d)", b))
	}
	return func(c *tableConfig) {
		c.boundary = b
	}
}

// WithOrder arranges every neighbor list after construction.
// Panics on an unknown Order value.
func WithOrder(o Order) Option {
	if o < Emission || o > Descending {
		panic(fmt.Sprintf("topology: WithOrder(%d)", o))
	}
	return func(c *tableConfig) {
		c.order = o
	}
}

// WithSortedNeighbors is WithOrder(Ascending).
func WithSortedNeighbors() Option {
	return WithOrder(Ascending)
}

// WithMaxDegree lowers the degree cap. Panics unless 0 ≤ k ≤ MaxNeighbors.
func WithMaxDegree(k int) Option {
	if k < 0 || k > MaxNeighbors {
		panic(fmt.Sprintf("topology: WithMaxDegree(%d)", k))
	}
	return func(c *tableConfig) {
		c.maxDegree = k
	}
}
