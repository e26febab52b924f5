// SPDX-License-Identifier: MIT
// Package: ising-dbnet/topology
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • boundary  = Clamped   (grid edges are not wrapped)
//   • order     = Emission  (neighbor lists keep strategy emission order)
//   • maxDegree = MaxNeighbors

package topology

// MaxNeighbors is the largest fan-in the network sweep supports.
const MaxNeighbors = 4

// Boundary selects how Grid treats its edges.
type Boundary int

const (
	// Clamped drops neighbors that fall outside the grid.
	Clamped Boundary = iota
	// Periodic wraps the grid into a torus.
	Periodic
)

// String returns "clamped" or "periodic".
func (b Boundary) String() string {
	if b == Periodic {
		return "periodic"
	}
	return "clamped"
}

// ParseBoundary maps "clamped"/"periodic" (and the aliases "open"/"torus")
// to a Boundary.
func ParseBoundary(s string) (Boundary, bool) {
	switch s {
	case "", "clamped", "open":
		return Clamped, true
	case "periodic", "torus", "toroidal":
		return Periodic, true
	default:
		return Clamped, false
	}
}

// Order selects how each neighbor list is arranged after construction.
type Order int

const (
	// Emission keeps the order in which the strategy emitted neighbors.
	Emission Order = iota
	// Ascending sorts every list by increasing id.
	Ascending
	// Descending sorts every list by decreasing id.
	Descending
)

// String returns "emission", "ascending" or "descending".
func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "emission"
	}
}

// ParseOrder maps "emission"/"ascending"/"descending" (and "", "asc", "desc")
// to an Order.
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "", "emission":
		return Emission, true
	case "ascending", "asc":
		return Ascending, true
	case "descending", "desc":
		return Descending, true
	default:
		return Emission, false
	}
}

// tableConfig aggregates the knobs used by strategies.
// It is passed by VALUE to constructors.
type tableConfig struct {
	boundary  Boundary
	order     Order
	maxDegree int
}

// newTableConfig applies options in order over the defaults (last wins).
// Complexity: O(len(opts)).
func newTableConfig(opts ...Option) tableConfig {
	cfg := tableConfig{
		boundary:  Clamped,
		order:     Emission,
		maxDegree: MaxNeighbors,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
