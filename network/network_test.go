// Package network_test exercises the sweep/load engine end to end: closed-form
// single-node cases, symmetric fields, the polarizing ring, order and worker
// invariance, and the lifecycle of a Network.
package network_test

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/node"
	"github.com/rrtucci/ising-dbnet/spin"
	"github.com/rrtucci/ising-dbnet/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func table(t testing.TB, opts []topology.Option, cons ...topology.Constructor) *topology.Table {
	t.Helper()
	tb, err := topology.Build(opts, cons...)
	require.NoError(t, err)
	return tb
}

func model(t testing.TB, beta, jj, h float64, opts ...condprob.Option) condprob.Model {
	t.Helper()
	m, err := condprob.New(beta, jj, h, opts...)
	require.NoError(t, err)
	return m
}

func newNet(t testing.TB, tb *topology.Table, m condprob.Model, cfg network.Config, opts ...network.Option) *network.Network {
	t.Helper()
	n, err := network.New(tb, m, cfg, opts...)
	require.NoError(t, err)
	return n
}

// TestIsolatedNode_Boltzmann: an isolated site with a certain +1 prior
// follows the two-state Boltzmann distribution for energy ±h.
func TestIsolatedNode_Boltzmann(t *testing.T) {
	t.Parallel()
	cfg := network.DefaultConfig()
	cfg.Prior = network.FixedPrior(0) // P(+1) = 1
	n := newNet(t, table(t, nil, topology.Isolated(1)), model(t, 1, 0.3, 0.2), cfg)

	_, err := n.Step(context.Background())
	require.NoError(t, err)

	y, err := n.Y(1)
	require.NoError(t, err)
	wantPlus := math.Exp(0.2) / (math.Exp(0.2) + math.Exp(-0.2))
	assert.InDelta(t, wantPlus, y.Prob(spin.Up), eps)
	assert.InDelta(t, 1-wantPlus, y.Prob(spin.Down), eps)

	// Nothing is learned from the prior: all uncertainty is conditional.
	mi, ok := y.MutualInfo()
	require.True(t, ok)
	assert.InDelta(t, 0, mi, eps)
	e, ok := y.Efficiency()
	require.True(t, ok)
	assert.InDelta(t, 0, e, 1e-9)
	assert.Equal(t, 2, n.Evaluations())
}

// TestSymmetricField_Uniform: with h = jj = 0 every posterior is exactly
// uniform and the magnetization is zero, for any prior.
func TestSymmetricField_Uniform(t *testing.T) {
	t.Parallel()
	for _, ctor := range []topology.Constructor{
		topology.Grid(3, 3),
		topology.Ring(5),
		topology.Tree(3, 3),
	} {
		cfg := network.DefaultConfig()
		cfg.Prior = network.FixedPrior(0.2)
		n := newNet(t, table(t, nil, ctor), model(t, 1, 0, 0), cfg)
		for i := 0; i < 3; i++ {
			_, err := n.Step(context.Background())
			require.NoError(t, err)
			for _, y := range n.Nodes(node.LayerY) {
				assert.Equal(t, [2]float64{0.5, 0.5}, y.Probs())
			}
			assert.Equal(t, 0.0, n.Magnetization())
		}
	}
}

// TestRing_PolarizesAndStops: a strongly coupled ring started from a biased
// prior drifts toward +1 until entropy collapses, then stops early.
func TestRing_PolarizesAndStops(t *testing.T) {
	t.Parallel()
	cfg := network.DefaultConfig()
	cfg.Steps = 20
	cfg.Prior = network.FixedPrior(0.2)
	n := newNet(t, table(t, nil, topology.Ring(4)), model(t, 1, 8, 1), cfg)

	res, err := n.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, network.DegenerateEfficiency, res.Reason)
	assert.Equal(t, 10, res.StepsRun)
	require.Len(t, res.Trajectory, 10)

	prev := -1.0
	for i, s := range res.Trajectory {
		assert.Equal(t, i, s.Step)
		assert.GreaterOrEqual(t, s.Magnetization, prev)
		prev = s.Magnetization
	}
	first := res.Trajectory[0]
	assert.InDelta(t, 0.8437101769337131, first.Magnetization, 1e-9)
	assert.True(t, first.EfficiencyDefined)

	last, ok := res.Last()
	require.True(t, ok)
	assert.False(t, last.EfficiencyDefined)
	assert.True(t, math.IsNaN(last.AvgEfficiency))
	assert.Equal(t, "undef", last.EfficiencyString())
	assert.Greater(t, last.Magnetization, 0.99999)
	assert.Equal(t, network.Stopped, n.State())
}

// TestHardGate_FirstStep checks the floored-gate variant against a reference
// value for the same ring.
func TestHardGate_FirstStep(t *testing.T) {
	t.Parallel()
	cfg := network.DefaultConfig()
	cfg.Prior = network.FixedPrior(0.2)
	n := newNet(t, table(t, nil, topology.Ring(4)), model(t, 1, 8, 1, condprob.WithHardGate()), cfg)

	s, err := n.Step(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.7082787204083013, s.Magnetization, 1e-9)
	assert.True(t, s.EfficiencyDefined)
}

// TestSweep_Idempotent: sweeping twice without Load yields identical Y.
func TestSweep_Idempotent(t *testing.T) {
	t.Parallel()
	cfg := network.DefaultConfig()
	cfg.Prior = network.FixedPrior(0.3)
	n := newNet(t, table(t, nil, topology.Grid(3, 4)), model(t, 0.7, 1.1, 0.2), cfg)

	require.NoError(t, n.Sweep(0))
	first := n.Snapshot()
	require.NoError(t, n.Sweep(0))
	assert.Equal(t, first, n.Snapshot())
	assert.Equal(t, network.Sweeping, n.State())
}

// TestSweep_OrderAndWorkersInvariant: order and parallelism never change the
// posteriors because every update reads the same X snapshot.
func TestSweep_OrderAndWorkersInvariant(t *testing.T) {
	t.Parallel()
	tb := table(t, []topology.Option{topology.WithBoundary(topology.Periodic)}, topology.Grid(4, 5))
	m := model(t, 0.9, 1.3, -0.1)

	run := func(order network.SweepOrder, workers int) [][2]float64 {
		cfg := network.DefaultConfig()
		cfg.Steps = 4
		cfg.Prior = network.PriorSpec{Mode: network.PriorRandom}
		cfg.Seed = 42
		cfg.Order = order
		cfg.Workers = workers
		n := newNet(t, tb, m, cfg)
		_, err := n.Run(context.Background())
		require.NoError(t, err)
		return n.Snapshot()
	}

	want := run(network.Forward, 1)
	assert.Equal(t, want, run(network.Reverse, 1))
	assert.Equal(t, want, run(network.Alternate, 1))
	assert.Equal(t, want, run(network.Forward, 3))
	assert.Equal(t, want, run(network.Alternate, 64))
}

// TestLoad_CopiesPosterior: after a step the X layer equals the Y layer.
func TestLoad_CopiesPosterior(t *testing.T) {
	t.Parallel()
	n := newNet(t, table(t, nil, topology.Tree(3, 3)), model(t, 1, 1, 0.5), network.DefaultConfig())
	_, err := n.Step(context.Background())
	require.NoError(t, err)

	xs := n.Nodes(node.LayerX)
	ys := n.Nodes(node.LayerY)
	require.Len(t, xs, len(ys))
	for i := range xs {
		assert.Equal(t, ys[i].Probs(), xs[i].Probs())
		assert.Equal(t, ys[i].Neighbors(), xs[i].Neighbors())
	}
	assert.Equal(t, 1, n.StepIndex())
}

// TestLoad_BeforeSweep reports ErrNotSwept.
func TestLoad_BeforeSweep(t *testing.T) {
	t.Parallel()
	n := newNet(t, table(t, nil, topology.Path(3)), model(t, 1, 1, 0), network.DefaultConfig())
	assert.ErrorIs(t, n.Load(), network.ErrNotSwept)
}

// TestMutualInfo_BoundedByEntropy holds over a grid of parameters.
func TestMutualInfo_BoundedByEntropy(t *testing.T) {
	t.Parallel()
	tb := table(t, nil, topology.Grid(3, 3))
	for _, beta := range []float64{0.1, 0.5, 1, 2} {
		for _, jj := range []float64{-1, 0, 0.5, 2} {
			for _, h := range []float64{-0.5, 0, 0.3} {
				cfg := network.DefaultConfig()
				cfg.Prior = network.FixedPrior(0.35)
				n := newNet(t, tb, model(t, beta, jj, h), cfg)
				for step := 0; step < 3; step++ {
					_, err := n.Step(context.Background())
					require.NoError(t, err)
					for _, y := range n.Nodes(node.LayerY) {
						m := y.Metrics()
						require.True(t, m.Computed)
						assert.GreaterOrEqual(t, m.CondInfo, -eps)
						assert.LessOrEqual(t, m.MutualInfo, m.Entropy+eps)
						if m.EfficiencyDefined {
							assert.LessOrEqual(t, m.Efficiency, 1+eps)
						}
						assert.InDelta(t, 1, y.Prob(spin.Down)+y.Prob(spin.Up), 1e-9)
					}
					mag := n.Magnetization()
					assert.GreaterOrEqual(t, mag, -1.0)
					assert.LessOrEqual(t, mag, 1.0)
				}
			}
		}
	}
}

// TestEvaluations counts model calls: 2^k configurations × 2 own states.
func TestEvaluations(t *testing.T) {
	t.Parallel()
	n := newNet(t, table(t, nil, topology.Ring(4)), model(t, 1, 1, 0), network.DefaultConfig())
	require.NoError(t, n.Sweep(0))
	assert.Equal(t, 4*4*2, n.Evaluations())

	// Clamped 3×3: four corners (k=2), four edges (k=3), one center (k=4).
	g := newNet(t, table(t, nil, topology.Grid(3, 3)), model(t, 1, 1, 0),
		network.Config{Steps: 1, Workers: 2})
	require.NoError(t, g.Sweep(0))
	assert.Equal(t, 4*8+4*16+32, g.Evaluations())
}

// TestLifecycle walks the state machine and the errors at each stage.
func TestLifecycle(t *testing.T) {
	t.Parallel()
	var zero network.Network
	assert.Equal(t, network.Uninitialized, zero.State())
	assert.ErrorIs(t, zero.Sweep(0), network.ErrNotInitialized)
	_, err := zero.Run(context.Background())
	assert.ErrorIs(t, err, network.ErrNotInitialized)

	cfg := network.DefaultConfig()
	cfg.Steps = 2
	n := newNet(t, table(t, nil, topology.Ring(3)), model(t, 0.5, 1, 0.1), cfg)
	assert.Equal(t, network.TopologyBuilt, n.State())

	res, err := n.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, network.StepsExhausted, res.Reason)
	assert.Equal(t, 2, res.StepsRun)
	assert.Equal(t, network.Stopped, n.State())

	_, err = n.Step(context.Background())
	assert.ErrorIs(t, err, network.ErrStopped)
	assert.ErrorIs(t, n.Sweep(0), network.ErrStopped)
	_, err = n.Run(context.Background())
	assert.ErrorIs(t, err, network.ErrStopped)
}

// TestRun_ZeroSteps returns an empty trajectory.
func TestRun_ZeroSteps(t *testing.T) {
	t.Parallel()
	n := newNet(t, table(t, nil, topology.Ring(3)), model(t, 1, 1, 0), network.Config{})
	res, err := n.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Trajectory)
	assert.Equal(t, network.StepsExhausted, res.Reason)
	_, ok := res.Last()
	assert.False(t, ok)
}

// TestRun_Canceled stops before the first step.
func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := newNet(t, table(t, nil, topology.Ring(3)), model(t, 1, 1, 0), network.DefaultConfig())
	res, err := n.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.StepsRun)
	assert.Equal(t, network.Stopped, n.State())
}

// TestOnStep sees every step in order, through chained hooks.
func TestOnStep(t *testing.T) {
	t.Parallel()
	var a, b []int
	cfg := network.DefaultConfig()
	cfg.Steps = 5
	n := newNet(t, table(t, nil, topology.Path(4)), model(t, 0.3, 1, 0), cfg,
		network.WithOnStep(func(s network.StepStats) { a = append(a, s.Step) }),
		network.WithOnStep(func(s network.StepStats) { b = append(b, s.Step) }),
		network.WithOnStep(nil),
	)
	res, err := n.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, a)
	assert.Equal(t, a, b)
	assert.Len(t, res.Trajectory, 5)
}

// TestNew_BadConfig rejects every invalid construction parameter.
func TestNew_BadConfig(t *testing.T) {
	t.Parallel()
	tb := table(t, nil, topology.Ring(3))
	m := model(t, 1, 1, 0)

	cases := map[string]func() error{
		"nil table": func() error {
			_, err := network.New(nil, m, network.DefaultConfig())
			return err
		},
		"negative steps": func() error {
			_, err := network.New(tb, m, network.Config{Steps: -1})
			return err
		},
		"negative workers": func() error {
			_, err := network.New(tb, m, network.Config{Workers: -2})
			return err
		},
		"bad order": func() error {
			_, err := network.New(tb, m, network.Config{Order: network.SweepOrder(9)})
			return err
		},
		"p0 out of range": func() error {
			_, err := network.New(tb, m, network.Config{Prior: network.FixedPrior(1.5)})
			return err
		},
		"bad prior mode": func() error {
			_, err := network.New(tb, m, network.Config{Prior: network.PriorSpec{Mode: 7}})
			return err
		},
		"negative beta": func() error {
			_, err := network.New(tb, condprob.Model{Beta: -1}, network.DefaultConfig())
			return err
		},
	}
	for name, fn := range cases {
		assert.ErrorIs(t, fn(), network.ErrBadConfig, name)
	}
	assert.Panics(t, func() { network.WithRand(nil) })
}

// TestSnapshotRestore round-trips a posterior into a fresh network's priors.
func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	tb := table(t, nil, topology.Grid(2, 2))
	m := model(t, 1, 0.8, 0.2)
	a := newNet(t, tb, m, network.DefaultConfig())
	_, err := a.Step(context.Background())
	require.NoError(t, err)
	snap := a.Snapshot()

	b := newNet(t, tb, m, network.DefaultConfig())
	require.NoError(t, b.Restore(snap))
	for i, x := range b.Nodes(node.LayerX) {
		assert.Equal(t, snap[i], x.Probs())
	}

	assert.ErrorIs(t, b.Restore(snap[:1]), network.ErrSnapshotSize)
	bad := append([][2]float64(nil), snap...)
	bad[2] = [2]float64{0.7, 0.7}
	assert.ErrorIs(t, b.Restore(bad), network.ErrNormalization)
	// The failed restore left the earlier pairs untouched.
	x1, err := b.X(1)
	require.NoError(t, err)
	assert.Equal(t, snap[0], x1.Probs())

	_, err = b.X(99)
	assert.ErrorIs(t, err, node.ErrInvalidID)
}

// TestRandomPrior_Seeded: the same seed reproduces the same priors.
func TestRandomPrior_Seeded(t *testing.T) {
	t.Parallel()
	tb := table(t, nil, topology.Ring(6))
	m := model(t, 1, 1, 0)
	cfg := network.Config{Prior: network.PriorSpec{Mode: network.PriorRandom}, Seed: 7}

	a := newNet(t, tb, m, cfg)
	b := newNet(t, tb, m, cfg, network.WithRand(rand.New(rand.NewSource(7))))
	for i, x := range a.Nodes(node.LayerX) {
		assert.Equal(t, x.Probs(), b.Nodes(node.LayerX)[i].Probs())
	}
}

// TestSample draws +1 everywhere once the ring is polarized.
func TestSample(t *testing.T) {
	t.Parallel()
	cfg := network.DefaultConfig()
	cfg.Prior = network.FixedPrior(0.2)
	n := newNet(t, table(t, nil, topology.Ring(4)), model(t, 1, 8, 1), cfg)
	_, err := n.Run(context.Background())
	require.NoError(t, err)

	for _, s := range n.Sample(rand.New(rand.NewSource(1))) {
		assert.Equal(t, spin.Up, s)
	}
	assert.Len(t, n.Sample(nil), 4)
}

// TestStepStats_JSON encodes an undefined efficiency as null.
func TestStepStats_JSON(t *testing.T) {
	t.Parallel()
	s := network.StepStats{Step: 3, Magnetization: 0.5, AvgEfficiency: math.NaN()}
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"avg_efficiency":null`)

	var back network.StepStats
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, math.IsNaN(back.AvgEfficiency))
	assert.Equal(t, 3, back.Step)

	s.AvgEfficiency, s.EfficiencyDefined = 0.25, true
	raw, err = json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 0.25, back.AvgEfficiency)
	assert.Equal(t, "0.250000", back.EfficiencyString())
}

// TestParseSweepOrder covers names and the error path.
func TestParseSweepOrder(t *testing.T) {
	t.Parallel()
	for _, o := range []network.SweepOrder{network.Forward, network.Reverse, network.Alternate} {
		got, err := network.ParseSweepOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := network.ParseSweepOrder("sideways")
	assert.ErrorIs(t, err, network.ErrBadConfig)
}
