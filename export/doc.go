// Package export turns network state into files other tools consume:
// Graphviz DOT for the lattice (edges coloured by efficiency, nodes shaded by
// a sampled spin), CSV trajectories, and SVG line plots of scan curves.
// Rendering DOT to an image shells out to a Graphviz layout engine.
package export

import "errors"

var (
	// ErrNoPoints indicates a plot request without data.
	ErrNoPoints = errors.New("export: no points to plot")
	// ErrEngineNotFound indicates the layout engine is not on PATH.
	ErrEngineNotFound = errors.New("export: layout engine not found")
	// ErrRender indicates the layout engine failed.
	ErrRender = errors.New("export: render failed")
)
