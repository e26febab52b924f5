package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rrtucci/ising-dbnet/condprob"
)

// Sentinel errors for network operations.
var (
	// ErrInvalidState aliases the spin/condprob sentinel.
	ErrInvalidState = condprob.ErrInvalidState
	// ErrNormalization aliases the condprob sentinel.
	ErrNormalization = condprob.ErrNormalization
	// ErrBadConfig indicates invalid construction parameters.
	ErrBadConfig = errors.New("network: invalid configuration")
	// ErrStopped indicates a step was requested after the run stopped.
	ErrStopped = errors.New("network: run already stopped")
	// ErrNotInitialized indicates use of a Network not built by New.
	ErrNotInitialized = errors.New("network: not initialized")
	// ErrNotSwept indicates Load before any sweep produced Y distributions.
	ErrNotSwept = errors.New("network: Y layer has not been swept")
	// ErrSnapshotSize indicates a snapshot whose length differs from the site count.
	ErrSnapshotSize = errors.New("network: snapshot size mismatch")
)

// State is the lifecycle stage of a Network.
type State int

const (
	// Uninitialized is the zero value: no topology yet.
	Uninitialized State = iota
	// TopologyBuilt means nodes exist and priors are set.
	TopologyBuilt
	// Sweeping means at least one sweep has started.
	Sweeping
	// Stopped is terminal.
	Stopped
)

// String returns a lowercase stage name.
func (s State) String() string {
	switch s {
	case TopologyBuilt:
		return "topology_built"
	case Sweeping:
		return "sweeping"
	case Stopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// SweepOrder selects the per-node update order inside a sweep. It never
// changes the result, because every node reads the same X snapshot.
type SweepOrder int

const (
	// Forward updates ids in ascending order.
	Forward SweepOrder = iota
	// Reverse updates ids in descending order.
	Reverse
	// Alternate is Forward on even steps and Reverse on odd steps.
	Alternate
)

// String returns "forward", "reverse" or "alternate".
func (o SweepOrder) String() string {
	switch o {
	case Reverse:
		return "reverse"
	case Alternate:
		return "alternate"
	default:
		return "forward"
	}
}

// ParseSweepOrder is the inverse of String. Empty means Forward.
func ParseSweepOrder(s string) (SweepOrder, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	case "alternate":
		return Alternate, nil
	default:
		return Forward, fmt.Errorf("ParseSweepOrder: %q: %w", s, ErrBadConfig)
	}
}

// reversed reports whether the sweep of the given step runs descending.
func (o SweepOrder) reversed(step int) bool {
	return o == Reverse || (o == Alternate && step%2 == 1)
}

// PriorMode selects how X nodes are initialized.
type PriorMode int

const (
	// PriorUniform sets every X node to [0.5, 0.5].
	PriorUniform PriorMode = iota
	// PriorFixed sets every X node to [P0, 1-P0].
	PriorFixed
	// PriorRandom draws P0 per node from the network RNG.
	PriorRandom
)

// PriorSpec describes the initial X layer.
type PriorSpec struct {
	Mode PriorMode
	P0   float64 // P(-1), used by PriorFixed
}

// FixedPrior returns a PriorSpec with P(-1) = p0 on every site.
func FixedPrior(p0 float64) PriorSpec {
	return PriorSpec{Mode: PriorFixed, P0: p0}
}

// Config is the immutable run configuration passed to New.
type Config struct {
	Steps   int        // number of steps Run may perform (≥ 0)
	Prior   PriorSpec  // initial X layer
	Order   SweepOrder // per-node update order
	Workers int        // goroutines per sweep; 0 or 1 means sequential
	Seed    int64      // seed of the network RNG (random priors, sampling)
}

// DefaultConfig returns 20 sequential forward steps from the uniform prior.
func DefaultConfig() Config {
	return Config{
		Steps:   20,
		Prior:   PriorSpec{Mode: PriorUniform},
		Order:   Forward,
		Workers: 1,
		Seed:    1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("Validate: steps=%d < 0: %w", c.Steps, ErrBadConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("Validate: workers=%d < 0: %w", c.Workers, ErrBadConfig)
	}
	if c.Order < Forward || c.Order > Alternate {
		return fmt.Errorf("Validate: order=%d: %w", c.Order, ErrBadConfig)
	}
	switch c.Prior.Mode {
	case PriorUniform, PriorRandom:
	case PriorFixed:
		if math.IsNaN(c.Prior.P0) || c.Prior.P0 < 0 || c.Prior.P0 > 1 {
			return fmt.Errorf("Validate: p0=%v: %w", c.Prior.P0, ErrBadConfig)
		}
	default:
		return fmt.Errorf("Validate: prior mode=%d: %w", c.Prior.Mode, ErrBadConfig)
	}
	return nil
}

// StopReason says why Run returned.
type StopReason int

const (
	// NotStopped is reported while a run is in progress.
	NotStopped StopReason = iota
	// StepsExhausted means the configured number of steps completed.
	StepsExhausted
	// DegenerateEfficiency means at least one node's entropy collapsed to
	// the saturation band, leaving its efficiency undefined.
	DegenerateEfficiency
)

// String returns a lowercase reason name.
func (r StopReason) String() string {
	switch r {
	case StepsExhausted:
		return "steps_exhausted"
	case DegenerateEfficiency:
		return "degenerate_efficiency"
	default:
		return "running"
	}
}

// StepStats are the aggregates of one completed step.
// AvgEfficiency is NaN when no node has a defined efficiency; branch on
// EfficiencyDefined, never on the number alone.
type StepStats struct {
	Step              int
	Magnetization     float64
	AvgEfficiency     float64
	EfficiencyDefined bool
	AvgEntropy        float64
	AvgCondInfo       float64
}

// stepStatsJSON is the wire form; a NaN efficiency becomes null.
type stepStatsJSON struct {
	Step              int      `json:"step"`
	Magnetization     float64  `json:"magnetization"`
	AvgEfficiency     *float64 `json:"avg_efficiency"`
	EfficiencyDefined bool     `json:"efficiency_defined"`
	AvgEntropy        float64  `json:"avg_entropy"`
	AvgCondInfo       float64  `json:"avg_cond_info"`
}

// MarshalJSON encodes an undefined average efficiency as null.
func (s StepStats) MarshalJSON() ([]byte, error) {
	w := stepStatsJSON{
		Step:              s.Step,
		Magnetization:     s.Magnetization,
		EfficiencyDefined: s.EfficiencyDefined,
		AvgEntropy:        s.AvgEntropy,
		AvgCondInfo:       s.AvgCondInfo,
	}
	if !math.IsNaN(s.AvgEfficiency) {
		v := s.AvgEfficiency
		w.AvgEfficiency = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes null as a NaN average efficiency.
func (s *StepStats) UnmarshalJSON(data []byte) error {
	var w stepStatsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = StepStats{
		Step:              w.Step,
		Magnetization:     w.Magnetization,
		AvgEfficiency:     math.NaN(),
		EfficiencyDefined: w.EfficiencyDefined,
		AvgEntropy:        w.AvgEntropy,
		AvgCondInfo:       w.AvgCondInfo,
	}
	if w.AvgEfficiency != nil {
		s.AvgEfficiency = *w.AvgEfficiency
	}
	return nil
}

// EfficiencyString renders the average efficiency, or "undef" when any node
// efficiency is undefined.
func (s StepStats) EfficiencyString() string {
	if !s.EfficiencyDefined {
		return "undef"
	}
	return fmt.Sprintf("%.6f", s.AvgEfficiency)
}

// Result is the outcome of Run: the trajectory of completed steps and the
// reason the loop ended.
type Result struct {
	Trajectory []StepStats
	Reason     StopReason
	StepsRun   int
}

// Last returns the final step of the trajectory.
func (r Result) Last() (StepStats, bool) {
	if len(r.Trajectory) == 0 {
		return StepStats{}, false
	}
	return r.Trajectory[len(r.Trajectory)-1], true
}
