// Package isingdbnet simulates a two-layer dynamic Markov network of binary
// spins: an X (prior) layer and a Y (posterior) layer over the same sites,
// advanced one step at a time by a Boltzmann conditional model.
//
// 🚀 What is in the box?
//
//	• spin      – the {-1, +1} alphabet and neighbor configurations
//	• condprob  – P(node | neighbors, own prior) with stable normalization
//	• node      – one site at one layer: distribution, entropy, efficiency
//	• topology  – neighbor tables: grid, ring, path, tree, custom lists
//	• network   – sweep, load, run loop, magnetization and efficiency
//	• export    – DOT lattices, CSV trajectories, SVG curves
//	• storage   – snapshot and run-record codecs, memory/SQLite stores
//	• config    – YAML configuration wired into the packages above
//	• stream    – live step statistics over WebSocket
//
// One step, pictured for a site with two neighbors:
//
//	 X1   X2   X3        (read-only during the sweep)
//	   ╲   │   ╱
//	        Y2           P(Y2) = Σ P(Y2 | x1, x3, own=x2) · P(x1)P(x3)P(x2)
//	        │
//	      X2 ← Y2        (load: posterior becomes the next prior)
//
// The command-line front end lives in cmd/isingsim:
//
//	isingsim init
//	isingsim run  -config isingsim.yaml
//	isingsim scan -config isingsim.yaml
package isingdbnet
