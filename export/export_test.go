package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/export"
	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/spin"
	"github.com/rrtucci/ising-dbnet/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEfficiencyHex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		e       float64
		defined bool
		want    string
	}{
		{0, true, "#440154"},
		{0.5, true, "#21918c"},
		{1, true, "#fde725"},
		{-3, true, "#440154"},
		{7, true, "#fde725"},
		{0.02, true, "#45085b"},
		{0.5, false, export.UndefinedColor},
		{math.NaN(), true, export.UndefinedColor},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, export.EfficiencyHex(tc.e, tc.defined), "e=%v defined=%v", tc.e, tc.defined)
	}
}

func TestWriteDOT(t *testing.T) {
	t.Parallel()
	views := []export.NodeView{
		{ID: 1, Neighbors: []int{2}, Efficiency: 0.5, Defined: true, Sample: spin.Up},
		{ID: 2, Neighbors: []int{1}, Sample: spin.Down},
	}
	var buf bytes.Buffer
	require.NoError(t, export.WriteDOT(&buf, views, nil))

	want := strings.Join([]string{
		`digraph "lattice" {`,
		`  node [shape=circle, style=filled];`,
		`  1 [label="1", fillcolor="#ffffff", fontcolor="#000000"];`,
		`  2 [label="2", fillcolor="#000000", fontcolor="#ffffff"];`,
		`  2 -> 1 [color="#21918c", label="0.50"];`,
		`  1 -> 2 [color="#bfbfbf", label="undef"];`,
		`}`,
		``,
	}, "\n")
	assert.Equal(t, want, buf.String())

	cfg := export.DefaultDOTConfig()
	cfg.EdgeLabels = false
	cfg.Name = "g"
	buf.Reset()
	require.NoError(t, export.WriteDOT(&buf, views, cfg))
	assert.Contains(t, buf.String(), `2 -> 1 [color="#21918c"];`)
	assert.True(t, strings.HasPrefix(buf.String(), `digraph "g" {`))
}

func TestViews_FromNetwork(t *testing.T) {
	t.Parallel()
	tb, err := topology.Build(nil, topology.Grid(2, 2))
	require.NoError(t, err)
	m, err := condprob.New(1, 1, 0.2)
	require.NoError(t, err)
	n, err := network.New(tb, m, network.DefaultConfig())
	require.NoError(t, err)
	_, err = n.Step(context.Background())
	require.NoError(t, err)

	views := export.Views(n, rand.New(rand.NewSource(3)))
	require.Len(t, views, 4)
	for i, v := range views {
		assert.Equal(t, i+1, v.ID)
		assert.Len(t, v.Neighbors, 2)
		assert.True(t, v.Defined)
		assert.True(t, v.Sample.Valid())
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteDOT(&buf, views, nil))
	assert.Equal(t, len(tb.Edges()), strings.Count(buf.String(), "->"))
}

func TestWriteTrajectoryCSV(t *testing.T) {
	t.Parallel()
	traj := []network.StepStats{
		{Step: 0, Magnetization: 0.5, AvgEfficiency: 0.25, EfficiencyDefined: true, AvgEntropy: 0.6, AvgCondInfo: 0.45},
		{Step: 1, Magnetization: 0.99, AvgEfficiency: math.NaN(), AvgEntropy: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, export.WriteTrajectoryCSV(&buf, traj, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.TrajectoryHeader, rows[0])
	assert.Equal(t, []string{"0", "0.500000", "0.250000", "true", "0.600000", "0.450000"}, rows[1])
	assert.Equal(t, "NA", rows[2][2])
	assert.Equal(t, "false", rows[2][3])
}

func TestWriteTrajectoryCSV_TSV(t *testing.T) {
	t.Parallel()
	cfg := &export.CSVConfig{Dialect: export.DialectTSV, Precision: 2, NAString: "undef"}
	var buf bytes.Buffer
	require.NoError(t, export.WriteTrajectoryCSV(&buf, []network.StepStats{{Step: 4, Magnetization: 1}}, cfg))
	assert.Equal(t, "4\t1.00\tundef\tfalse\t0.00\t0.00\n", buf.String())
}

func TestWriteCurveCSV(t *testing.T) {
	t.Parallel()
	pts := []export.CurvePoint{{Param: 0.5, X: 0.5, Y: 0.1}, {Param: 1.5, X: 1.5, Y: 0.9}}
	var buf bytes.Buffer
	require.NoError(t, export.WriteCurveCSV(&buf, pts, "beta_hat", "mag", &export.CSVConfig{IncludeHeader: true, Precision: 1}))
	assert.Equal(t, "param,beta_hat,mag\n0.5,0.5,0.1\n1.5,1.5,0.9\n", buf.String())
}

func TestWriteCurveSVG(t *testing.T) {
	t.Parallel()
	pts := []export.CurvePoint{
		{Param: 2, X: 2, Y: 0.9},
		{Param: 0.5, X: 0.5, Y: 0.05},
		{Param: 1, X: 1, Y: math.NaN()},
	}
	cfg := export.DefaultSVGConfig()
	cfg.Title = "mag <vs> beta_hat"
	cfg.XLabel = "beta_hat"
	cfg.YLabel = "mag"
	cfg.Marker, cfg.MarkerX = true, 1
	cfg.Diagonal = true
	cfg.LabelEnds = true

	var buf bytes.Buffer
	require.NoError(t, export.WriteCurveSVG(&buf, pts, cfg))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, `class="marker"`)
	assert.Contains(t, out, `class="diagonal"`)
	assert.Contains(t, out, "mag &lt;vs&gt; beta_hat")
	assert.Equal(t, 2, strings.Count(out, `class="param"`))
}

func TestWriteCurveSVG_NoPoints(t *testing.T) {
	t.Parallel()
	err := export.WriteCurveSVG(&bytes.Buffer{}, []export.CurvePoint{{X: math.NaN()}}, nil)
	assert.ErrorIs(t, err, export.ErrNoPoints)
}

func TestRender_MissingEngine(t *testing.T) {
	t.Parallel()
	err := export.Render(context.Background(), "no-such-layout-engine-xyz", "in.dot", "out.png", "png")
	assert.ErrorIs(t, err, export.ErrEngineNotFound)
}

func TestRender_Graphviz(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz not installed")
	}
	dir := t.TempDir()
	dotPath := filepath.Join(dir, "g.dot")
	outPath := filepath.Join(dir, "g.svg")
	require.NoError(t, os.WriteFile(dotPath, []byte("digraph g { 1 -> 2; }\n"), 0o644))

	require.NoError(t, export.Render(context.Background(), "dot", dotPath, outPath, "svg"))
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.NoError(t, os.WriteFile(dotPath, []byte("not a graph"), 0o644))
	assert.ErrorIs(t, export.Render(context.Background(), "dot", dotPath, outPath, "svg"), export.ErrRender)
}
