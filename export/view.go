package export

import (
	"math/rand"

	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/node"
	"github.com/rrtucci/ising-dbnet/spin"
)

// NodeView is the read-only picture of one Y node used by the writers.
type NodeView struct {
	ID         int
	Neighbors  []int
	Efficiency float64
	Defined    bool
	Sample     spin.Spin
}

// Views samples one spin per Y node and collects its efficiency, in id order.
// A nil rng uses the network's own generator.
func Views(net *network.Network, rng *rand.Rand) []NodeView {
	samples := net.Sample(rng)
	ys := net.Nodes(node.LayerY)
	out := make([]NodeView, len(ys))
	for i, y := range ys {
		e, ok := y.Efficiency()
		out[i] = NodeView{
			ID:         y.ID,
			Neighbors:  y.Neighbors(),
			Efficiency: e,
			Defined:    ok,
			Sample:     samples[i],
		}
	}
	return out
}
