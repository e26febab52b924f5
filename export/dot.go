package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/rrtucci/ising-dbnet/spin"
)

// DOTConfig specifies options for DOT output.
type DOTConfig struct {
	// Name is the graph identifier.
	// Default: "lattice"
	Name string

	// EdgeLabels writes the target efficiency on every edge.
	// Default: true
	EdgeLabels bool

	// Precision is the number of decimals in edge labels.
	// Default: 2
	Precision int

	// UpColor and DownColor fill nodes by sampled spin.
	// Default: "#ffffff" and "#000000"
	UpColor   string
	DownColor string
}

// DefaultDOTConfig returns the default DOT options.
func DefaultDOTConfig() *DOTConfig {
	return &DOTConfig{
		Name:       "lattice",
		EdgeLabels: true,
		Precision:  2,
		UpColor:    "#ffffff",
		DownColor:  "#000000",
	}
}

// WriteDOT writes a directed graph with one edge per (neighbor → node) link.
// Each edge is coloured by the efficiency of its target node and each node is
// filled according to its sampled spin.
func WriteDOT(w io.Writer, views []NodeView, cfg *DOTConfig) error {
	if cfg == nil {
		cfg = DefaultDOTConfig()
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %s {\n", strconv.Quote(cfg.Name))
	fmt.Fprintln(bw, "  node [shape=circle, style=filled];")
	for _, v := range views {
		fill, font := cfg.UpColor, cfg.DownColor
		if v.Sample == spin.Down {
			fill, font = cfg.DownColor, cfg.UpColor
		}
		fmt.Fprintf(bw, "  %d [label=\"%d\", fillcolor=%q, fontcolor=%q];\n", v.ID, v.ID, fill, font)
	}
	for _, v := range views {
		color := EfficiencyHex(v.Efficiency, v.Defined)
		for _, nb := range v.Neighbors {
			if cfg.EdgeLabels {
				fmt.Fprintf(bw, "  %d -> %d [color=%q, label=%q];\n", nb, v.ID, color, edgeLabel(v, cfg.Precision))
				continue
			}
			fmt.Fprintf(bw, "  %d -> %d [color=%q];\n", nb, v.ID, color)
		}
	}
	fmt.Fprintln(bw, "}")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteDOT: %w", err)
	}
	return nil
}

func edgeLabel(v NodeView, precision int) string {
	if !v.Defined {
		return "undef"
	}
	return strconv.FormatFloat(v.Efficiency, 'f', precision, 64)
}
