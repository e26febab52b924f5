package network

import (
	"fmt"
	"math"
	"sync"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/node"
	"github.com/rrtucci/ising-dbnet/spin"
)

// Sweep recomputes every Y node from the current X layer. step selects the
// direction under the Alternate order. The X layer is not modified.
func (n *Network) Sweep(step int) error {
	switch n.state {
	case Uninitialized:
		return ErrNotInitialized
	case Stopped:
		return ErrStopped
	}
	n.state = Sweeping

	order := make([]int, len(n.ys))
	for i := range order {
		order[i] = i
	}
	if n.cfg.Order.reversed(step) {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	workers := n.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(order) {
		workers = len(order)
	}

	if workers == 1 {
		evals, err := n.sweepRange(order)
		n.evals = evals
		return err
	}

	// Contiguous chunks; each worker owns its Y nodes exclusively.
	chunk := (len(order) + workers - 1) / workers
	errs := make([]error, workers)
	evals := make([]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(order) {
			break
		}
		hi := lo + chunk
		if hi > len(order) {
			hi = len(order)
		}
		wg.Add(1)
		go func(w int, part []int) {
			defer wg.Done()
			evals[w], errs[w] = n.sweepRange(part)
		}(w, order[lo:hi])
	}
	wg.Wait()

	n.evals = 0
	for _, e := range evals {
		n.evals += e
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) sweepRange(indices []int) (int, error) {
	total := 0
	for _, i := range indices {
		evals, err := n.updateNode(n.ys[i])
		total += evals
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// updateNode marginalizes the model over neighbor configurations and the own
// prior state of y, then stores the posterior and its information metrics.
func (n *Network) updateNode(y *node.Node) (int, error) {
	x := n.xs[y.ID-1]
	nbIDs := y.Neighbors()
	nbX := make([]*node.Node, len(nbIDs))
	for i, id := range nbIDs {
		nbX[i] = n.xs[id-1]
	}

	var probMinus, probPlus, condInfo float64
	evals := 0
	for _, combo := range n.configs[len(nbIDs)] {
		joint := 1.0
		for i, s := range combo {
			joint *= nbX[i].Prob(s)
		}
		for _, own := range spin.Both {
			w := joint * x.Prob(own)
			res, err := n.model.Conditional(combo, own)
			evals++
			if err != nil {
				return evals, fmt.Errorf("Sweep: node %d: %w", y.ID, err)
			}
			tm, tp := w*res.Minus, w*res.Plus
			probMinus += tm
			probPlus += tp
			condInfo -= xlogy(tm, res.Minus) + xlogy(tp, res.Plus)
		}
	}

	if err := condprob.CheckPair(probMinus, probPlus); err != nil {
		return evals, fmt.Errorf("Sweep: node %d: %w", y.ID, err)
	}
	// Remove round-off so it cannot compound across steps.
	sum := probMinus + probPlus
	if err := y.SetProbs([2]float64{probMinus / sum, probPlus / sum}); err != nil {
		return evals, fmt.Errorf("Sweep: %w", err)
	}
	y.SetMetrics(y.ComputeEntropy(), condInfo)
	return evals, nil
}

// xlogy is a·ln(p) with 0·ln(0) = 0.
func xlogy(a, p float64) float64 {
	if a == 0 {
		return 0
	}
	return a * math.Log(p)
}

// Load copies every Y distribution into its paired X node.
func (n *Network) Load() error {
	switch n.state {
	case Uninitialized:
		return ErrNotInitialized
	case Stopped:
		return ErrStopped
	}
	for _, y := range n.ys {
		if !y.HasProbs() {
			return fmt.Errorf("Load: node %d: %w", y.ID, ErrNotSwept)
		}
	}
	for i, y := range n.ys {
		if err := n.xs[i].SetProbs(y.Probs()); err != nil {
			return fmt.Errorf("Load: %w", err)
		}
	}
	return nil
}
