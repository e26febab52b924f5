package network

import "math/rand"

// Option customizes a Network in New.
type Option func(*Network)

// WithOnStep registers a hook called after every completed step, in step
// order, on the goroutine that called Step or Run.
func WithOnStep(fn func(StepStats)) Option {
	return func(n *Network) {
		if fn == nil {
			return
		}
		prev := n.onStep
		if prev == nil {
			n.onStep = fn
			return
		}
		n.onStep = func(s StepStats) {
			prev(s)
			fn(s)
		}
	}
}

// WithRand replaces the seeded network RNG. Panics on nil.
func WithRand(rng *rand.Rand) Option {
	if rng == nil {
		panic("network: WithRand(nil)")
	}
	return func(n *Network) {
		n.rng = rng
	}
}
