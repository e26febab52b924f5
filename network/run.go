package network

import (
	"context"
	"fmt"
)

// Step performs one sweep, computes the step aggregates and loads the Y layer
// into the X layer. The OnStep hook observes the returned stats. A failed
// sweep stops the network.
func (n *Network) Step(ctx context.Context) (StepStats, error) {
	if n.state == Uninitialized {
		return StepStats{}, ErrNotInitialized
	}
	if n.state == Stopped {
		return StepStats{}, ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return StepStats{}, fmt.Errorf("Step: %w", err)
	}

	if err := n.Sweep(n.step); err != nil {
		n.state = Stopped
		return StepStats{}, err
	}
	stats := n.stats()
	if err := n.Load(); err != nil {
		n.state = Stopped
		return StepStats{}, err
	}
	n.step++

	if n.onStep != nil {
		n.onStep(stats)
	}
	return stats, nil
}

// Run steps until Config.Steps steps have completed or any node efficiency
// becomes undefined. On error the partial result is returned with it and the
// network is stopped. Context cancellation is checked between steps.
func (n *Network) Run(ctx context.Context) (Result, error) {
	var res Result
	if n.state == Uninitialized {
		return res, ErrNotInitialized
	}
	if n.state == Stopped {
		return res, ErrStopped
	}

	for n.step < n.cfg.Steps {
		stats, err := n.Step(ctx)
		if err != nil {
			n.state = Stopped
			return res, err
		}
		res.Trajectory = append(res.Trajectory, stats)
		res.StepsRun++
		if !stats.EfficiencyDefined {
			res.Reason = DegenerateEfficiency
			break
		}
	}
	if res.Reason == NotStopped {
		res.Reason = StepsExhausted
	}
	n.state = Stopped
	return res, nil
}

func (n *Network) stats() StepStats {
	eff, defined := n.AverageEfficiency()
	return StepStats{
		Step:              n.step,
		Magnetization:     n.Magnetization(),
		AvgEfficiency:     eff,
		EfficiencyDefined: defined,
		AvgEntropy:        n.AverageEntropy(),
		AvgCondInfo:       n.AverageCondInfo(),
	}
}
