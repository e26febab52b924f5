package network

import "math"

// Magnetization is the mean over Y nodes of P(+1) - P(-1), in [-1, 1].
func (n *Network) Magnetization() float64 {
	if len(n.ys) == 0 {
		return 0
	}
	sum := 0.0
	for _, y := range n.ys {
		p := y.Probs()
		sum += p[1] - p[0]
	}
	return sum / float64(len(n.ys))
}

// AverageEfficiency returns the mean of the defined Y efficiencies and
// whether every Y efficiency is defined. The mean is NaN when none is.
func (n *Network) AverageEfficiency() (float64, bool) {
	sum, count := 0.0, 0
	for _, y := range n.ys {
		if e, ok := y.Efficiency(); ok {
			sum += e
			count++
		}
	}
	if count == 0 {
		return math.NaN(), false
	}
	return sum / float64(count), count == len(n.ys)
}

// AverageEntropy is the mean entropy over swept Y nodes, 0 before any sweep.
func (n *Network) AverageEntropy() float64 {
	sum, count := 0.0, 0
	for _, y := range n.ys {
		if h, ok := y.Entropy(); ok {
			sum += h
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// AverageCondInfo is the mean conditional information over swept Y nodes.
func (n *Network) AverageCondInfo() float64 {
	sum, count := 0.0, 0
	for _, y := range n.ys {
		if c, ok := y.CondInfo(); ok {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
