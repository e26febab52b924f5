package topology

import "fmt"

// Table is an immutable neighbor table for sites 1..N.
// It is safe for concurrent reads.
type Table struct {
	lists [][]int
}

// Edge is a directed influence link: the Y node of To reads the X node of From.
type Edge struct {
	From, To int
}

// Size returns the number of sites N.
func (t *Table) Size() int {
	return len(t.lists)
}

// IDs returns 1..N in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, len(t.lists))
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// Has reports whether id is a site of the table.
func (t *Table) Has(id int) bool {
	return id >= 1 && id <= len(t.lists)
}

// Neighbors returns a copy of the ordered neighbor list of id.
func (t *Table) Neighbors(id int) ([]int, error) {
	if !t.Has(id) {
		return nil, fmt.Errorf("Neighbors: id=%d (size %d): %w", id, len(t.lists), ErrUnknownSite)
	}
	l := t.lists[id-1]
	out := make([]int, len(l))
	copy(out, l)
	return out, nil
}

// Degree returns the number of neighbors of id, or -1 for an unknown id.
func (t *Table) Degree(id int) int {
	if !t.Has(id) {
		return -1
	}
	return len(t.lists[id-1])
}

// MaxDegree returns the largest neighbor count in the table.
func (t *Table) MaxDegree() int {
	m := 0
	for _, l := range t.lists {
		if len(l) > m {
			m = len(l)
		}
	}
	return m
}

// Lists returns a deep copy of all neighbor lists indexed by id-1.
func (t *Table) Lists() [][]int {
	out := make([][]int, len(t.lists))
	for i, l := range t.lists {
		out[i] = append([]int{}, l...)
	}
	return out
}

// Edges flattens the table into directed (neighbor → site) links, ordered by
// site id and then by neighbor position.
func (t *Table) Edges() []Edge {
	var out []Edge
	for i, l := range t.lists {
		for _, nb := range l {
			out = append(out, Edge{From: nb, To: i + 1})
		}
	}
	return out
}

// Validate checks the table invariants against MaxNeighbors.
func (t *Table) Validate() error {
	return t.validate(MaxNeighbors)
}

func (t *Table) validate(maxDegree int) error {
	n := len(t.lists)
	for i, l := range t.lists {
		id := i + 1
		if len(l) > maxDegree {
			return topologyErrorf("Validate", ErrTooManyNeighbors, "site %d has %d neighbors (max %d)", id, len(l), maxDegree)
		}
		seen := make(map[int]bool, len(l))
		for _, nb := range l {
			switch {
			case nb < 1 || nb > n:
				return topologyErrorf("Validate", ErrBadNeighbor, "site %d → %d out of range [1,%d]", id, nb, n)
			case nb == id:
				return topologyErrorf("Validate", ErrBadNeighbor, "site %d links to itself", id)
			case seen[nb]:
				return topologyErrorf("Validate", ErrBadNeighbor, "site %d lists %d twice", id, nb)
			}
			seen[nb] = true
		}
	}
	return nil
}
