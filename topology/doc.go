// Package topology provides reusable "functional-options"-style neighbor-table
// strategies for the two-layer spin network. Every strategy produces the same
// artifact, an immutable Table of ordered neighbor ids, so the network sweep
// consumes all lattices uniformly.
//
// The package offers the following key components:
//
//   - Composition:
//     – Constructor: a closure that appends a block of sites to a tableBuilder.
//     – Build:       resolves options and applies constructors in order.
//   - Strategies (impl_*.go):
//     – Isolated(n):         n sites without neighbors.
//     – Path(n):             open chain, neighbors i-1 and i+1.
//     – Ring(n):             closed chain (cycle), neighbors i-1 and i+1 mod n.
//     – Grid(rows, cols):    4-neighborhood lattice in N, E, S, W order,
//     clamped (edge sites have fewer neighbors) or periodic (torus).
//     – Tree(width, rows):   layered tree; each non-root site has exactly two
//     parents in the previous row, top roots and side roots have none.
//     – FromLists(lists):    caller-supplied lists, validated.
//   - Options:
//     – WithBoundary(Clamped|Periodic), WithOrder(Emission|Ascending|Descending),
//       WithSortedNeighbors(), WithMaxDegree(k).
//
// Guarantees:
//
//   - Site ids are 1..N, assigned in constructor order, each block row-major.
//   - Every table satisfies: neighbor ids in range, no self links, no duplicate
//     neighbors, at most MaxNeighbors (4) neighbors per site.
//   - Determinism: the same constructors and options produce the same table.
//   - Fast-fail on meaningless option values via panics in option constructors;
//     strategies themselves return sentinel errors and never panic.
//
// Errors:
//
//   - ErrTooFewSites:      a size parameter is below the strategy minimum.
//   - ErrTooManyNeighbors: a site would exceed the degree cap.
//   - ErrBadNeighbor:      out-of-range, self or duplicate neighbor id.
//   - ErrUnknownSite:      lookup of an id outside 1..N.
//   - ErrConstructFailed:  nil constructor or empty result.
package topology
