package condprob_test

import (
	"math"
	"testing"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/spin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allInputs enumerates every neighbor configuration of size 0..4 paired with
// both own states.
func allInputs(t *testing.T) [][]spin.Spin {
	t.Helper()
	var out [][]spin.Spin
	for k := 0; k <= 4; k++ {
		cfgs, err := spin.Configurations(k)
		require.NoError(t, err)
		out = append(out, cfgs...)
	}
	return out
}

// TestNew_Validation rejects negative beta and non-finite constants.
func TestNew_Validation(t *testing.T) {
	_, err := condprob.New(-0.1, 1, 0)
	assert.ErrorIs(t, err, condprob.ErrInvalidParameter)

	_, err = condprob.New(1, math.NaN(), 0)
	assert.ErrorIs(t, err, condprob.ErrInvalidParameter)

	_, err = condprob.New(1, 1, math.Inf(1))
	assert.ErrorIs(t, err, condprob.ErrInvalidParameter)

	m, err := condprob.New(1, 0.3, 0.2, condprob.WithSelfCoupling(0.5), condprob.WithHardGate())
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.Lam)
	assert.Equal(t, condprob.HardGate, m.Gate)
	assert.InDelta(t, 0.3, m.BetaHat(), 1e-15)

	assert.Panics(t, func() { condprob.WithSelfCoupling(math.NaN()) })
}

// TestConditional_Normalized checks positivity and sum-to-one over a grid of
// parameters, neighbor configurations and own states, in both gate modes.
func TestConditional_Normalized(t *testing.T) {
	inputs := allInputs(t)
	for _, gate := range []condprob.GateMode{condprob.SoftGate, condprob.HardGate} {
		for _, beta := range []float64{0, 0.1, 1, 5, 50, 1e4} {
			for _, jj := range []float64{-2, 0, 0.3, 8} {
				for _, h := range []float64{-1, 0, 0.2} {
					m := condprob.Model{Beta: beta, JJ: jj, H: h, Lam: 0.4, Gate: gate}
					for _, nb := range inputs {
						for _, own := range spin.Both {
							res, err := m.Conditional(nb, own)
							require.NoError(t, err)
							assert.GreaterOrEqual(t, res.Minus, 0.0)
							assert.GreaterOrEqual(t, res.Plus, 0.0)
							assert.InDelta(t, 1.0, res.Minus+res.Plus, 1e-9)
						}
					}
				}
			}
		}
	}
}

// TestConditional_ZeroBeta yields the uniform pair for any input and mode.
func TestConditional_ZeroBeta(t *testing.T) {
	for _, gate := range []condprob.GateMode{condprob.SoftGate, condprob.HardGate} {
		m := condprob.Model{Beta: 0, JJ: 3, H: -2, Lam: 1, Gate: gate}
		for _, nb := range allInputs(t) {
			for _, own := range spin.Both {
				res, err := m.Conditional(nb, own)
				require.NoError(t, err)
				assert.Equal(t, 0.5, res.Minus)
				assert.Equal(t, 0.5, res.Plus)
				assert.Equal(t, 2.0, res.Z)
			}
		}
	}
}

// TestConditional_Boltzmann compares against the closed form exp(±βF)/Z.
func TestConditional_Boltzmann(t *testing.T) {
	m, err := condprob.New(1, 0.3, 0.2)
	require.NoError(t, err)

	nb := []spin.Spin{spin.Up, spin.Up, spin.Up, spin.Down}
	res, err := m.Conditional(nb, spin.Down)
	require.NoError(t, err)

	field := 0.3*2/2 + 0.2
	plus, minus := math.Exp(field), math.Exp(-field)
	assert.InDelta(t, plus/(plus+minus), res.Plus, 1e-12)
	assert.InDelta(t, minus/(plus+minus), res.Minus, 1e-12)
	assert.InDelta(t, plus+minus, res.Z, 1e-12)

	// Without self-coupling the own state has no influence.
	res2, err := m.Conditional(nb, spin.Up)
	require.NoError(t, err)
	assert.Equal(t, res, res2)
}

// TestConditional_SelfCoupling favors agreement with the own prior state.
func TestConditional_SelfCoupling(t *testing.T) {
	m, err := condprob.New(1, 0, 0, condprob.WithSelfCoupling(0.7))
	require.NoError(t, err)

	up, err := m.Conditional(nil, spin.Up)
	require.NoError(t, err)
	down, err := m.Conditional(nil, spin.Down)
	require.NoError(t, err)

	assert.Greater(t, up.Plus, 0.5)
	assert.Greater(t, down.Minus, 0.5)
	assert.InDelta(t, up.Plus, down.Minus, 1e-15)
	assert.InDelta(t, math.Exp(0.7)/(math.Exp(0.7)+math.Exp(-0.7)), up.Plus, 1e-12)
}

// TestConditional_HardGate floors the disagreeing state at GateFloor.
func TestConditional_HardGate(t *testing.T) {
	m, err := condprob.New(1, 0.3, 0.2, condprob.WithHardGate())
	require.NoError(t, err)

	nb := []spin.Spin{spin.Up, spin.Up, spin.Down, spin.Down}
	res, err := m.Conditional(nb, spin.Down)
	require.NoError(t, err)

	minus := math.Exp(-0.2)
	z := minus + condprob.GateFloor
	assert.InDelta(t, minus/z, res.Minus, 1e-12)
	assert.InDelta(t, condprob.GateFloor/z, res.Plus, 1e-12)
	assert.InDelta(t, z, res.Z, 1e-12)
}

// TestConditional_Saturation stays finite when Z overflows.
func TestConditional_Saturation(t *testing.T) {
	m := condprob.Model{Beta: 1e6, JJ: 1, H: 1}
	res, err := m.Conditional([]spin.Spin{spin.Up, spin.Up}, spin.Up)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Plus)
	assert.Equal(t, 0.0, res.Minus)
	assert.True(t, math.IsInf(res.Z, 1))
}

// TestConditional_InvalidState rejects values outside the alphabet.
func TestConditional_InvalidState(t *testing.T) {
	m, err := condprob.New(1, 1, 0)
	require.NoError(t, err)

	_, err = m.Conditional([]spin.Spin{spin.Up, 0}, spin.Up)
	assert.ErrorIs(t, err, condprob.ErrInvalidState)

	_, err = m.Conditional([]spin.Spin{spin.Up}, spin.Spin(2))
	assert.ErrorIs(t, err, condprob.ErrInvalidState)
	assert.ErrorIs(t, err, spin.ErrInvalidState)
}

// TestCheckPair flags pairs that do not form a distribution.
func TestCheckPair(t *testing.T) {
	assert.NoError(t, condprob.CheckPair(0.25, 0.75))
	assert.ErrorIs(t, condprob.CheckPair(0.5, 0.6), condprob.ErrNormalization)
	assert.ErrorIs(t, condprob.CheckPair(-0.1, 1.1), condprob.ErrNormalization)
	assert.ErrorIs(t, condprob.CheckPair(math.NaN(), 1), condprob.ErrNormalization)
}

// TestResult_Of indexes the pair by spin.
func TestResult_Of(t *testing.T) {
	r := condprob.Result{Minus: 0.3, Plus: 0.7}
	assert.Equal(t, 0.3, r.Of(spin.Down))
	assert.Equal(t, 0.7, r.Of(spin.Up))
	assert.Equal(t, [2]float64{0.3, 0.7}, r.Pair())
}
