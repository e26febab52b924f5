// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// api.go - public entry point and the shared construction buffer.
//
// Design contract:
//   - One orchestrator: Build(opts, cons...). Resolves cfg, runs cons in order,
//     finalizes and validates the table.
//   - Each constructor appends a contiguous block of sites; ids inside a block
//     are offset by the number of sites already present, so blocks compose
//     into disconnected sub-lattices.
//   - Determinism: same inputs/options and constructor order ⇒ identical tables.

package topology

import (
	"fmt"
	"sort"
)

const methodBuild = "Build"

// Constructor appends sites and their neighbor lists to b.
// Constructors MUST validate parameters first and return sentinel errors.
type Constructor func(b *tableBuilder, cfg tableConfig) error

// Build resolves options and applies every constructor in order.
// Any constructor error is wrapped with "Build: %w" and returned immediately.
// Complexity: O(len(opts)) + Σ cost of each constructor + O(N·d) validation.
func Build(opts []Option, cons ...Constructor) (*Table, error) {
	cfg := newTableConfig(opts...)
	b := &tableBuilder{}

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("%s: nil constructor at index %d: %w", methodBuild, i, ErrConstructFailed)
		}
		if err := fn(b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", methodBuild, err)
		}
	}
	if len(b.lists) == 0 {
		return nil, fmt.Errorf("%s: no sites: %w", methodBuild, ErrConstructFailed)
	}

	switch cfg.order {
	case Ascending:
		for _, l := range b.lists {
			sort.Ints(l)
		}
	case Descending:
		for _, l := range b.lists {
			sort.Sort(sort.Reverse(sort.IntSlice(l)))
		}
	}

	t := &Table{lists: b.lists}
	if err := t.validate(cfg.maxDegree); err != nil {
		return nil, fmt.Errorf("%s: %w", methodBuild, err)
	}
	return t, nil
}

// MustBuild is Build for fixtures and examples; it panics on error.
func MustBuild(opts []Option, cons ...Constructor) *Table {
	t, err := Build(opts, cons...)
	if err != nil {
		panic(err)
	}
	return t
}

// tableBuilder accumulates neighbor lists indexed by id-1.
type tableBuilder struct {
	lists [][]int
}

// addSites appends n empty sites and returns the id of the first one.
func (b *tableBuilder) addSites(n int) int {
	first := len(b.lists) + 1
	for i := 0; i < n; i++ {
		b.lists = append(b.lists, []int{})
	}
	return first
}

// link appends nb to the neighbor list of id, enforcing the table invariants
// eagerly so the failing strategy is named in the error.
func (b *tableBuilder) link(method string, cfg tableConfig, id, nb int) error {
	if nb < 1 || nb > len(b.lists) {
		return topologyErrorf(method, ErrBadNeighbor, "site %d → %d out of range [1,%d]", id, nb, len(b.lists))
	}
	if nb == id {
		return topologyErrorf(method, ErrBadNeighbor, "site %d links to itself", id)
	}
	l := b.lists[id-1]
	for _, have := range l {
		if have == nb {
			return topologyErrorf(method, ErrBadNeighbor, "site %d lists %d twice", id, nb)
		}
	}
	if len(l) >= cfg.maxDegree {
		return topologyErrorf(method, ErrTooManyNeighbors, "site %d exceeds %d neighbors", id, cfg.maxDegree)
	}
	b.lists[id-1] = append(l, nb)
	return nil
}
