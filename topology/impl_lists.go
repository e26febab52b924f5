// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// impl_lists.go - FromLists(lists) constructor for caller-supplied topologies.
//
// Contract:
//   • len(lists) ≥ 1; lists[i] holds the neighbors of block site i+1 using
//     block-local ids 1..len(lists).
//   • Invariants are enforced per link (range, self, duplicate, degree cap).
//
// Complexity: O(Σ len(lists[i])) time.

package topology

const methodFromLists = "FromLists"

// FromLists returns a Constructor that appends len(lists) sites with the
// given neighbor lists. The input is not retained.
func FromLists(lists [][]int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if len(lists) < 1 {
			return topologyErrorf(methodFromLists, ErrTooFewSites, "no sites")
		}
		n := len(lists)
		first := b.addSites(n)
		for i, l := range lists {
			for _, nb := range l {
				if nb < 1 || nb > n {
					return topologyErrorf(methodFromLists, ErrBadNeighbor, "site %d → %d out of range [1,%d]", i+1, nb, n)
				}
				if err := b.link(methodFromLists, cfg, first+i, first+nb-1); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
