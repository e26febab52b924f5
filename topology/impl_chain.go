// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// impl_chain.go - Isolated(n), Path(n) and Ring(n) constructors.
//
// Contract:
//   • Isolated: n ≥ 1, no links.
//   • Path:     n ≥ 2, site i lists (i-1, i+1) where present.
//   • Ring:     n ≥ 3, site i lists (i-1, i+1) modulo n.
//   • Returns only sentinel errors; never panics at runtime.
//
// Complexity: O(n) time, O(1) extra space.
//
// Determinism: neighbor order is always "left, then right".

package topology

const (
	methodIsolated = "Isolated"
	methodPath     = "Path"
	methodRing     = "Ring"

	minIsolatedSites = 1
	minPathSites     = 2
	minRingSites     = 3
)

// Isolated returns a Constructor that appends n sites with no neighbors.
func Isolated(n int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if n < minIsolatedSites {
			return topologyErrorf(methodIsolated, ErrTooFewSites, "n=%d < min=%d", n, minIsolatedSites)
		}
		b.addSites(n)
		return nil
	}
}

// Path returns a Constructor that appends an open chain of n sites.
func Path(n int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if n < minPathSites {
			return topologyErrorf(methodPath, ErrTooFewSites, "n=%d < min=%d", n, minPathSites)
		}
		first := b.addSites(n)
		for i := 0; i < n; i++ {
			id := first + i
			if i > 0 {
				if err := b.link(methodPath, cfg, id, id-1); err != nil {
					return err
				}
			}
			if i < n-1 {
				if err := b.link(methodPath, cfg, id, id+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// Ring returns a Constructor that appends a closed chain (cycle) of n sites.
func Ring(n int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if n < minRingSites {
			return topologyErrorf(methodRing, ErrTooFewSites, "n=%d < min=%d", n, minRingSites)
		}
		first := b.addSites(n)
		for i := 0; i < n; i++ {
			id := first + i
			left := first + (i-1+n)%n
			right := first + (i+1)%n
			if err := b.link(methodRing, cfg, id, left); err != nil {
				return err
			}
			if err := b.link(methodRing, cfg, id, right); err != nil {
				return err
			}
		}
		return nil
	}
}
