package condprob

import (
	"errors"
	"fmt"
	"math"

	"github.com/rrtucci/ising-dbnet/spin"
)

const (
	// GateFloor is the score given to the gated-off state in hard-gate mode.
	GateFloor = 1e-4
	// NormTolerance bounds |P(-1)+P(+1)-1| for a valid output.
	NormTolerance = 1e-9
)

var (
	// ErrInvalidState aliases spin.ErrInvalidState so callers may test either.
	ErrInvalidState = spin.ErrInvalidState
	// ErrNormalization indicates a probability pair that does not sum to one.
	ErrNormalization = errors.New("condprob: probabilities do not sum to one")
	// ErrInvalidParameter indicates a meaningless physical constant.
	ErrInvalidParameter = errors.New("condprob: invalid parameter")
)

// GateMode selects how the own prior state enters the energy.
type GateMode int

const (
	// SoftGate couples the own state only through Lam (zero by default).
	SoftGate GateMode = iota
	// HardGate floors the score of the state that disagrees with the own state.
	HardGate
)

// String returns "soft" or "hard".
func (g GateMode) String() string {
	if g == HardGate {
		return "hard"
	}
	return "soft"
}

// Model holds the physical constants of the conditional distribution.
// It is a value type; copies are independent and never mutated.
type Model struct {
	Beta float64
	JJ   float64
	H    float64
	Lam  float64
	Gate GateMode
}

// Result is the output of Conditional: the normalized pair and the
// unnormalized partition value.
type Result struct {
	Minus float64 // P(node = -1 | ...)
	Plus  float64 // P(node = +1 | ...)
	Z     float64 // score(+1) + score(-1) before normalization
}

// Pair returns the result as a probability pair indexed by spin.Index.
func (r Result) Pair() [2]float64 {
	return [2]float64{r.Minus, r.Plus}
}

// Of returns the conditional probability of s.
func (r Result) Of(s spin.Spin) float64 {
	if s == spin.Up {
		return r.Plus
	}
	return r.Minus
}

// Option customizes a Model in New.
type Option func(*Model)

// WithSelfCoupling sets the ferromagnetic coupling between the own prior
// state and the candidate state. Panics on non-finite input.
func WithSelfCoupling(lam float64) Option {
	if math.IsNaN(lam) || math.IsInf(lam, 0) {
		panic("condprob: WithSelfCoupling(non-finite)")
	}
	return func(m *Model) {
		m.Lam = lam
	}
}

// WithHardGate enables the floored gate on the own prior state.
func WithHardGate() Option {
	return func(m *Model) {
		m.Gate = HardGate
	}
}

// New validates the constants and returns a Model.
// beta must be ≥ 0; all constants must be finite.
func New(beta, jj, h float64, opts ...Option) (Model, error) {
	m := Model{Beta: beta, JJ: jj, H: h}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Validate checks the constants of a Model built as a literal.
func (m Model) Validate() error {
	params := []struct {
		name string
		v    float64
	}{{"beta", m.Beta}, {"jj", m.JJ}, {"h", m.H}, {"lam", m.Lam}}
	for _, p := range params {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("Validate: %s=%v: %w", p.name, p.v, ErrInvalidParameter)
		}
	}
	if m.Beta < 0 {
		return fmt.Errorf("Validate: beta=%v < 0: %w", m.Beta, ErrInvalidParameter)
	}
	if m.Gate != SoftGate && m.Gate != HardGate {
		return fmt.Errorf("Validate: gate=%d: %w", m.Gate, ErrInvalidParameter)
	}
	return nil
}

// BetaHat is the reduced coupling Beta·JJ.
func (m Model) BetaHat() float64 {
	return m.Beta * m.JJ
}

// Conditional computes P(node | neighbors, own) for both node states.
// Complexity: O(len(neighbors)).
func (m Model) Conditional(neighbors []spin.Spin, own spin.Spin) (Result, error) {
	if err := spin.Validate(neighbors...); err != nil {
		return Result{}, fmt.Errorf("Conditional: neighbors: %w", err)
	}
	if !own.Valid() {
		return Result{}, fmt.Errorf("Conditional: own state %s: %w", own, ErrInvalidState)
	}
	if m.Beta == 0 {
		return Result{Minus: 0.5, Plus: 0.5, Z: 2}, nil
	}

	field := m.JJ*float64(spin.Sum(neighbors))/2 + m.H + m.Lam*float64(own)

	// Log-scores of the two candidate states.
	logPlus := m.Beta * field
	logMinus := -m.Beta * field
	if m.Gate == HardGate {
		if own == spin.Up {
			logMinus = math.Log(GateFloor)
		} else {
			logPlus = math.Log(GateFloor)
		}
	}

	d := logPlus - logMinus
	res := Result{
		Minus: sigmoid(-d),
		Plus:  sigmoid(d),
		Z:     math.Exp(logPlus) + math.Exp(logMinus),
	}
	if err := CheckPair(res.Minus, res.Plus); err != nil {
		return Result{}, fmt.Errorf("Conditional: S=%d own=%s: %w", spin.Sum(neighbors), own, err)
	}
	return res, nil
}

// CheckPair returns ErrNormalization unless both entries are finite, ≥ 0 and
// sum to one within NormTolerance.
func CheckPair(minus, plus float64) error {
	if math.IsNaN(minus) || math.IsNaN(plus) || minus < 0 || plus < 0 {
		return fmt.Errorf("pair [%v, %v]: %w", minus, plus, ErrNormalization)
	}
	if math.Abs(minus+plus-1) > NormTolerance {
		return fmt.Errorf("pair [%v, %v] sums to %v: %w", minus, plus, minus+plus, ErrNormalization)
	}
	return nil
}

// sigmoid is the logistic function 1/(1+e^-x), evaluated without overflow.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
