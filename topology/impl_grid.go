// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// impl_grid.go - implementation of Grid(rows, cols) constructor.
//
// Canonical model:
//   • 2D orthogonal lattice with the 4-neighborhood, listed N, E, S, W.
//   • Site ids are row-major inside the block: id = first + r*cols + c.
//   • Clamped boundary: neighbors outside the grid are dropped, so edge sites
//     have 3 neighbors and corner sites 2.
//   • Periodic boundary: coordinates wrap (torus). For rows or cols < 3 the
//     wrap can revisit a site or reach the site itself; such links are
//     dropped, never duplicated.
//
// Contract:
//   • rows ≥ 1 and cols ≥ 1 (else ErrTooFewSites).
//   • Returns only sentinel errors; never panics at runtime.
//
// Complexity: O(rows*cols) time, O(1) extra space.

package topology

const (
	methodGrid = "Grid"
	minGridDim = 1
)

// gridOffsets lists (dr, dc) in N, E, S, W order.
var gridOffsets = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Grid returns a Constructor that appends a rows×cols lattice.
func Grid(rows, cols int) Constructor {
	return func(b *tableBuilder, cfg tableConfig) error {
		if rows < minGridDim || cols < minGridDim {
			return topologyErrorf(methodGrid, ErrTooFewSites, "rows=%d, cols=%d (each must be ≥ %d)", rows, cols, minGridDim)
		}
		first := b.addSites(rows * cols)
		id := func(r, c int) int { return first + r*cols + c }

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := id(r, c)
				for _, d := range gridOffsets {
					nr, nc := r+d[0], c+d[1]
					if cfg.boundary == Periodic {
						nr = (nr + rows) % rows
						nc = (nc + cols) % cols
					} else if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					v := id(nr, nc)
					if v == u || b.listed(u, v) {
						continue
					}
					if err := b.link(methodGrid, cfg, u, v); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
}

// listed reports whether nb already appears in the list of id.
func (b *tableBuilder) listed(id, nb int) bool {
	for _, have := range b.lists[id-1] {
		if have == nb {
			return true
		}
	}
	return false
}
