// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// impl_tree.go - implementation of Tree(width, rows) constructor.
//
// Canonical model (layered "top root / non-root / side root" tree):
//   • rows × width sites, ids row-major inside the block.
//   • Row 0: width top roots, no parents.
//   • Row r ≥ 1: the last site (c = width-1) is a side root with no parents;
//     every other site lists exactly two parents from row r-1, at columns c
//     and c+1, in that order.
//
// Contract:
//   • width ≥ 1 and rows ≥ 1 (else ErrTooFewSites).
//   • Returns only sentinel errors; never panics at runtime.
//
// Complexity: O(rows*width) time, O(1) extra space.

package topology

const (
	methodTree = "Tree"
	minTreeDim = 1
)

// Site roles in a Tree.
const (
	RoleTopRoot  = "top_root"
	RoleNonRoot  = "nonroot"
	RoleSideRoot = "side_root"
)

// Tree returns a Constructor that appends a layered two-parent tree.
func Tree(width, rows int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if width < minTreeDim || rows < minTreeDim {
			return topologyErrorf(methodTree, ErrTooFewSites, "width=%d, rows=%d (each must be ≥ %d)", width, rows, minTreeDim)
		}
		first := b.addSites(width * rows)
		id := func(r, c int) int { return first + r*width + c }

		for r := 1; r < rows; r++ {
			for c := 0; c < width-1; c++ {
				u := id(r, c)
				if err := b.link(methodTree, cfg, u, id(r-1, c)); err != nil {
					return err
				}
				if err := b.link(methodTree, cfg, u, id(r-1, c+1)); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// TreeRole names the role of the site at (row, col) in a Tree of the given width.
func TreeRole(width, row, col int) string {
	switch {
	case row == 0:
		return RoleTopRoot
	case col == width-1:
		return RoleSideRoot
	default:
		return RoleNonRoot
	}
}
