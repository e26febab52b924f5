// Package network runs the two-layer dynamic Markov network: it pairs an X
// (prior) node and a Y (posterior) node per site of a topology.Table, sweeps
// every Y node from a read-only snapshot of the X layer, and then copies the
// Y layer into the X layer to advance the clock by one step.
//
// 🚀 What happens in one step?
//
//  1. Sweep: for each Y node with k neighbors, enumerate all 2^k neighbor
//     configurations and both own-X states. The joint weight of a pair is the
//     product of the neighbors' X marginals and the own X marginal (neighbors
//     are treated as independent; this is a modeling assumption of the
//     network, not something derived). The condprob.Model is called once per
//     pair and accumulates
//     P(y) += w·P(y|…)   and   condInfo -= w·P(y|…)·ln P(y|…).
//  2. The Y pair is checked to sum to one within 1e-9 and renormalized to
//     remove round-off; entropy, mutual information (entropy - condInfo) and
//     efficiency (mutual/entropy, undefined at zero entropy) are recomputed.
//  3. Aggregates: magnetization (mean of P(+1)-P(-1)) and the average of the
//     defined efficiencies together with an all-defined flag.
//  4. Load: every Y pair is copied into its X node, in bulk, after the sweep.
//
// State machine:
//
//	Uninitialized → TopologyBuilt → Sweeping → Stopped
//
// Run loops Step until the configured number of steps is exhausted or an
// efficiency becomes undefined (DegenerateEfficiency). The second case is a
// reported terminal condition, not an error.
//
// Concurrency:
//
//	Config.Workers > 1 splits the Y nodes of a sweep across goroutines. Each
//	worker writes only its own Y nodes and reads only the X layer; Load runs
//	after every worker has finished. A Network itself is not safe for
//	concurrent use by multiple callers.
//
// Errors:
//
//   - ErrInvalidState / ErrNormalization abort the run (corrupted model).
//   - ErrBadConfig for invalid construction parameters.
//   - ErrStopped when stepping a stopped network.
//   - ErrNotInitialized for a zero-value Network.
package network
