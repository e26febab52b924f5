// Package spin defines the binary spin alphabet {-1,+1} shared by every
// layer of the network, together with validation and the exhaustive
// enumeration of spin assignments over a small number of slots.
//
// Errors:
//
//   - ErrInvalidState: a value outside {-1,+1} was supplied.
//   - ErrTooManySlots: an enumeration was requested for more than MaxSlots slots.
package spin

import (
	"errors"
	"fmt"
)

// Spin is a single site orientation. Only Down and Up are valid values.
type Spin int8

const (
	// Down is the spin value -1 (probability index 0).
	Down Spin = -1
	// Up is the spin value +1 (probability index 1).
	Up Spin = 1
)

// MaxSlots bounds Configurations. Four neighbors plus the own state is the
// largest enumeration the network performs.
const MaxSlots = 8

var (
	// ErrInvalidState indicates a spin value outside {-1,+1}.
	ErrInvalidState = errors.New("spin: value must be -1 or +1")
	// ErrTooManySlots indicates an enumeration wider than MaxSlots.
	ErrTooManySlots = errors.New("spin: too many slots to enumerate")
)

// Both lists the alphabet in probability-index order.
var Both = [2]Spin{Down, Up}

// Valid reports whether s is Down or Up.
func (s Spin) Valid() bool {
	return s == Down || s == Up
}

// String renders "-1" or "+1"; invalid values render with a '?' prefix.
func (s Spin) String() string {
	switch s {
	case Down:
		return "-1"
	case Up:
		return "+1"
	default:
		return fmt.Sprintf("?%d", int8(s))
	}
}

// Index maps Down to 0 and Up to 1, matching the layout of a probability pair.
// Invalid values map to -1.
func (s Spin) Index() int {
	switch s {
	case Down:
		return 0
	case Up:
		return 1
	default:
		return -1
	}
}

// FromIndex is the inverse of Index.
func FromIndex(i int) (Spin, error) {
	switch i {
	case 0:
		return Down, nil
	case 1:
		return Up, nil
	default:
		return 0, fmt.Errorf("FromIndex: index %d: %w", i, ErrInvalidState)
	}
}

// FromInt converts an integer into a Spin, rejecting anything but -1 and +1.
func FromInt(v int) (Spin, error) {
	s := Spin(v)
	if v < -1 || v > 1 || !s.Valid() {
		return 0, fmt.Errorf("FromInt: %d: %w", v, ErrInvalidState)
	}
	return s, nil
}

// Validate returns ErrInvalidState (wrapped with the slot position) for the
// first invalid entry of states.
func Validate(states ...Spin) error {
	for i, s := range states {
		if !s.Valid() {
			return fmt.Errorf("Validate: slot %d holds %s: %w", i, s, ErrInvalidState)
		}
	}
	return nil
}

// Sum returns the integer sum of states. Callers validate first.
func Sum(states []Spin) int {
	total := 0
	for _, s := range states {
		total += int(s)
	}
	return total
}

// Configurations returns all 2^k assignments of the alphabet to k slots.
// The first slot varies slowest and Down precedes Up, so the order is the
// binary counting order with Down=0 and Up=1. k=0 yields one empty assignment.
// Complexity: O(k·2^k) time and memory.
func Configurations(k int) ([][]Spin, error) {
	if k < 0 || k > MaxSlots {
		return nil, fmt.Errorf("Configurations: k=%d (max %d): %w", k, MaxSlots, ErrTooManySlots)
	}
	total := 1 << k
	out := make([][]Spin, total)
	for mask := 0; mask < total; mask++ {
		cfg := make([]Spin, k)
		for slot := 0; slot < k; slot++ {
			bit := (mask >> (k - 1 - slot)) & 1
			cfg[slot] = Both[bit]
		}
		out[mask] = cfg
	}
	return out, nil
}
