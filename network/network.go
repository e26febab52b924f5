package network

import (
	"fmt"
	"math/rand"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/node"
	"github.com/rrtucci/ising-dbnet/spin"
	"github.com/rrtucci/ising-dbnet/topology"
)

// Network owns the X and Y layers of one simulation.
type Network struct {
	table *topology.Table
	model condprob.Model
	cfg   Config

	xs []*node.Node // index id-1
	ys []*node.Node // index id-1

	// configs[k] lists every neighbor configuration of k slots.
	configs [][][]spin.Spin

	state  State
	step   int // completed steps
	evals  int // model calls in the last sweep
	rng    *rand.Rand
	onStep func(StepStats)
}

// New builds the paired X/Y nodes of table, applies cfg.Prior to the X layer
// and returns a Network in the TopologyBuilt state.
func New(table *topology.Table, model condprob.Model, cfg Config, opts ...Option) (*Network, error) {
	if table == nil || table.Size() == 0 {
		return nil, fmt.Errorf("New: empty topology: %w", ErrBadConfig)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("New: %v: %w", err, ErrBadConfig)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("New: %v: %w", err, ErrBadConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	n := &Network{
		table: table,
		model: model,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(n)
	}

	size := table.Size()
	n.xs = make([]*node.Node, size)
	n.ys = make([]*node.Node, size)
	for id := 1; id <= size; id++ {
		nb, _ := table.Neighbors(id)
		x, err := node.New(id, node.LayerX, nb)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		y, err := node.New(id, node.LayerY, nb)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		n.xs[id-1], n.ys[id-1] = x, y
	}
	if err := n.applyPrior(); err != nil {
		return nil, err
	}

	n.configs = make([][][]spin.Spin, table.MaxDegree()+1)
	for k := range n.configs {
		n.configs[k], _ = spin.Configurations(k)
	}

	n.state = TopologyBuilt
	return n, nil
}

func (n *Network) applyPrior() error {
	for _, x := range n.xs {
		switch n.cfg.Prior.Mode {
		case PriorFixed:
			if err := x.SetPrior(n.cfg.Prior.P0); err != nil {
				return fmt.Errorf("New: %v: %w", err, ErrBadConfig)
			}
		case PriorRandom:
			x.SetRandomPrior(n.rng)
		default:
			x.SetUniformPrior()
		}
	}
	return nil
}

// State returns the lifecycle stage.
func (n *Network) State() State {
	return n.state
}

// StepIndex is the number of completed steps.
func (n *Network) StepIndex() int {
	return n.step
}

// Size is the number of sites.
func (n *Network) Size() int {
	return len(n.ys)
}

// Config returns the run configuration.
func (n *Network) Config() Config {
	return n.cfg
}

// Model returns the conditional probability model.
func (n *Network) Model() condprob.Model {
	return n.model
}

// Table returns the neighbor table.
func (n *Network) Table() *topology.Table {
	return n.table
}

// Evaluations is the number of model calls made by the last sweep.
func (n *Network) Evaluations() int {
	return n.evals
}

// X returns a copy of the prior node with the given id.
func (n *Network) X(id int) (*node.Node, error) {
	return n.lookup(n.xs, id)
}

// Y returns a copy of the posterior node with the given id.
func (n *Network) Y(id int) (*node.Node, error) {
	return n.lookup(n.ys, id)
}

func (n *Network) lookup(layer []*node.Node, id int) (*node.Node, error) {
	if n.state == Uninitialized {
		return nil, ErrNotInitialized
	}
	if id < 1 || id > len(layer) {
		return nil, fmt.Errorf("lookup: id=%d: %w", id, node.ErrInvalidID)
	}
	return layer[id-1].Clone(), nil
}

// Nodes returns copies of every node of a layer in id order.
func (n *Network) Nodes(layer node.Layer) []*node.Node {
	src := n.ys
	if layer == node.LayerX {
		src = n.xs
	}
	out := make([]*node.Node, len(src))
	for i, nd := range src {
		out[i] = nd.Clone()
	}
	return out
}

// Snapshot returns the Y distributions [P(-1), P(+1)] in id order.
func (n *Network) Snapshot() [][2]float64 {
	out := make([][2]float64, len(n.ys))
	for i, y := range n.ys {
		out[i] = y.Probs()
	}
	return out
}

// Restore sets the X distributions from a snapshot in id order. Every pair
// must be normalized; on error no X node is changed.
func (n *Network) Restore(pairs [][2]float64) error {
	if n.state == Uninitialized {
		return ErrNotInitialized
	}
	if n.state == Stopped {
		return ErrStopped
	}
	if len(pairs) != len(n.xs) {
		return fmt.Errorf("Restore: %d pairs for %d sites: %w", len(pairs), len(n.xs), ErrSnapshotSize)
	}
	for i, p := range pairs {
		if err := condprob.CheckPair(p[0], p[1]); err != nil {
			return fmt.Errorf("Restore: site %d: %w", i+1, err)
		}
	}
	for i, p := range pairs {
		_ = n.xs[i].SetProbs(p)
	}
	return nil
}

// Sample draws one spin per Y node from its posterior, in id order.
func (n *Network) Sample(rng *rand.Rand) []spin.Spin {
	if rng == nil {
		rng = n.rng
	}
	out := make([]spin.Spin, len(n.ys))
	for i, y := range n.ys {
		out[i] = y.Sample(rng)
	}
	return out
}
