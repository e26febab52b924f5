// Package condprob computes the conditional probability of a Y-node's spin
// given the spins of its neighbors and its own prior (X-layer) spin, using a
// Boltzmann energy functional.
//
// What:
//
//   - Model is an immutable record of physical constants: inverse temperature
//     Beta, neighbor coupling JJ, external field H, optional self-coupling Lam.
//   - Conditional returns [P(-1), P(+1)] and the unnormalized partition value Z.
//
// Energy:
//
//	F      = JJ·S/2 + H                 (S = sum of neighbor spins)
//	E(+1)  = -(F + Lam·own)
//	E(-1)  = +(F + Lam·own)
//	score  = exp(-Beta·E),  Z = score(+1) + score(-1)
//
// The self-coupling term Lam·own·candidate is ferromagnetic: a candidate state
// that disagrees with the own prior state pays 2·Lam of energy.
//
// Hard gate:
//
//	WithHardGate() replaces the score of the state disagreeing with the own
//	prior state by the floor GateFloor (1e-4) instead of zero, so the
//	normalizer can never vanish.
//
// Edge cases:
//
//   - Beta = 0 returns exactly [0.5, 0.5] with Z = 2, in every mode.
//   - Probabilities are computed in logistic form, so a huge Beta·F saturates
//     to {0,1} instead of producing NaN when Z overflows.
//
// Errors:
//
//   - ErrInvalidState: a neighbor or own spin outside {-1,+1}.
//   - ErrNormalization: the output pair failed the sum-to-one check.
//   - ErrInvalidParameter: negative or non-finite constants passed to New.
package condprob
