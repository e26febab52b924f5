// Package node holds the per-site state of the two-layer network: a
// probability pair over {-1,+1}, the fixed neighbor list, and the derived
// information metrics recomputed on every sweep.
//
// A physical site owns exactly one X node (prior/input layer) and one Y node
// (posterior/output layer) sharing the same id and neighbor list.
package node

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/spin"
)

// MaxNeighbors is the largest supported fan-in of a node.
const MaxNeighbors = 4

// SaturationEps is the numerical-zero band of the entropy: probabilities
// closer than this to 0 or 1 have exactly zero entropy.
const SaturationEps = 1e-6

var (
	// ErrInvalidID indicates an id below 1.
	ErrInvalidID = errors.New("node: id must be ≥ 1")
	// ErrTooManyNeighbors indicates a neighbor list longer than MaxNeighbors.
	ErrTooManyNeighbors = errors.New("node: too many neighbors")
	// ErrInvalidProbability indicates a prior outside [0,1].
	ErrInvalidProbability = errors.New("node: probability out of range")
	// ErrNormalization aliases condprob.ErrNormalization.
	ErrNormalization = condprob.ErrNormalization
)

// Layer identifies the X (prior) or Y (posterior) view of a site.
type Layer int

const (
	// LayerX is the prior/input layer read during a sweep.
	LayerX Layer = iota
	// LayerY is the posterior/output layer written during a sweep.
	LayerY
)

// String returns "X" or "Y".
func (l Layer) String() string {
	if l == LayerY {
		return "Y"
	}
	return "X"
}

// Metrics groups the derived scalars of a Y node. Every field is present
// from construction; Computed and EfficiencyDefined say which are valid.
type Metrics struct {
	Entropy           float64
	CondInfo          float64
	MutualInfo        float64
	Efficiency        float64
	Computed          bool // Entropy, CondInfo and MutualInfo are valid
	EfficiencyDefined bool // Efficiency is valid (entropy above SaturationEps)
}

// Node is one site at one layer.
type Node struct {
	ID    int
	Layer Layer

	neighbors []int
	probs     [2]float64
	hasProbs  bool
	metrics   Metrics
}

// New creates a node with a copy of neighbors. X nodes start with the
// uniform prior; Y nodes start with no distribution until their first sweep.
func New(id int, layer Layer, neighbors []int) (*Node, error) {
	if id < 1 {
		return nil, fmt.Errorf("New: id=%d: %w", id, ErrInvalidID)
	}
	if len(neighbors) > MaxNeighbors {
		return nil, fmt.Errorf("New: id=%d has %d neighbors (max %d): %w",
			id, len(neighbors), MaxNeighbors, ErrTooManyNeighbors)
	}
	nb := make([]int, len(neighbors))
	copy(nb, neighbors)

	n := &Node{
		ID:        id,
		Layer:     layer,
		neighbors: nb,
		probs:     [2]float64{0.5, 0.5},
	}
	if layer == LayerX {
		n.hasProbs = true
	}
	return n, nil
}

// Neighbors returns a copy of the ordered neighbor ids.
func (n *Node) Neighbors() []int {
	out := make([]int, len(n.neighbors))
	copy(out, n.neighbors)
	return out
}

// Degree is the number of neighbors.
func (n *Node) Degree() int {
	return len(n.neighbors)
}

// Probs returns [P(-1), P(+1)].
func (n *Node) Probs() [2]float64 {
	return n.probs
}

// Prob returns the probability of s.
func (n *Node) Prob(s spin.Spin) float64 {
	if s == spin.Up {
		return n.probs[1]
	}
	return n.probs[0]
}

// HasProbs reports whether a distribution has been assigned.
func (n *Node) HasProbs() bool {
	return n.hasProbs
}

// SetProbs assigns a distribution after checking it is normalized.
func (n *Node) SetProbs(p [2]float64) error {
	if err := condprob.CheckPair(p[0], p[1]); err != nil {
		return fmt.Errorf("SetProbs: node %s%d: %w", n.Layer, n.ID, err)
	}
	n.probs = p
	n.hasProbs = true
	return nil
}

// SetPrior sets probs = [p0, 1-p0].
func (n *Node) SetPrior(p0 float64) error {
	if math.IsNaN(p0) || p0 < 0 || p0 > 1 {
		return fmt.Errorf("SetPrior: node %s%d p0=%v: %w", n.Layer, n.ID, p0, ErrInvalidProbability)
	}
	n.probs = [2]float64{p0, 1 - p0}
	n.hasProbs = true
	return nil
}

// SetUniformPrior sets probs = [0.5, 0.5].
func (n *Node) SetUniformPrior() {
	n.probs = [2]float64{0.5, 0.5}
	n.hasProbs = true
}

// SetRandomPrior draws p0 uniformly from [0,1) using rng.
func (n *Node) SetRandomPrior(rng *rand.Rand) {
	p0 := rng.Float64()
	n.probs = [2]float64{p0, 1 - p0}
	n.hasProbs = true
}

// Sample draws one spin: Down with probability probs[0], else Up.
func (n *Node) Sample(rng *rand.Rand) spin.Spin {
	if rng.Float64() < n.probs[0] {
		return spin.Down
	}
	return spin.Up
}

// BinaryEntropy is the natural-log entropy of a coin with P(heads)=p.
// It is exactly 0 within SaturationEps of 0 or 1.
func BinaryEntropy(p float64) float64 {
	if p < SaturationEps || p > 1-SaturationEps {
		return 0
	}
	return -p*math.Log(p) - (1-p)*math.Log(1-p)
}

// ComputeEntropy returns BinaryEntropy(probs[0]).
func (n *Node) ComputeEntropy() float64 {
	return BinaryEntropy(n.probs[0])
}

// SetMetrics stores entropy and conditional information, derives the mutual
// information and recomputes the efficiency.
func (n *Node) SetMetrics(entropy, condInfo float64) {
	n.metrics = Metrics{
		Entropy:    entropy,
		CondInfo:   condInfo,
		MutualInfo: entropy - condInfo,
		Computed:   true,
	}
	n.SetEfficiency()
}

// SetEfficiency sets efficiency = mutual/entropy when the entropy exceeds
// SaturationEps and marks it undefined otherwise.
func (n *Node) SetEfficiency() {
	if !n.metrics.Computed || n.metrics.Entropy <= SaturationEps {
		n.metrics.Efficiency = 0
		n.metrics.EfficiencyDefined = false
		return
	}
	n.metrics.Efficiency = n.metrics.MutualInfo / n.metrics.Entropy
	n.metrics.EfficiencyDefined = true
}

// ResetMetrics marks every derived scalar undefined.
func (n *Node) ResetMetrics() {
	n.metrics = Metrics{}
}

// Metrics returns a copy of the derived scalars.
func (n *Node) Metrics() Metrics {
	return n.metrics
}

// Entropy returns the last computed entropy.
func (n *Node) Entropy() (float64, bool) {
	return n.metrics.Entropy, n.metrics.Computed
}

// CondInfo returns the last computed conditional information.
func (n *Node) CondInfo() (float64, bool) {
	return n.metrics.CondInfo, n.metrics.Computed
}

// MutualInfo returns the last computed mutual information.
func (n *Node) MutualInfo() (float64, bool) {
	return n.metrics.MutualInfo, n.metrics.Computed
}

// Efficiency returns mutual/entropy and whether it is defined.
func (n *Node) Efficiency() (float64, bool) {
	return n.metrics.Efficiency, n.metrics.EfficiencyDefined
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	c := *n
	c.neighbors = n.Neighbors()
	return &c
}
