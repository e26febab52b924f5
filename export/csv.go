package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rrtucci/ising-dbnet/network"
)

// CSVDialect specifies the CSV format variant.
type CSVDialect string

const (
	// DialectStandard uses RFC 4180 CSV.
	DialectStandard CSVDialect = "standard"
	// DialectTSV uses tab-separated values.
	DialectTSV CSVDialect = "tsv"
)

// CSVConfig specifies options for CSV export.
type CSVConfig struct {
	// Dialect specifies the CSV format variant.
	// Default: DialectStandard
	Dialect CSVDialect

	// IncludeHeader writes column headers as the first row.
	// Default: true
	IncludeHeader bool

	// Precision is the number of decimal places for floating-point values.
	// Default: 6
	Precision int

	// NAString represents an undefined average efficiency.
	// Default: "NA" (R and pandas read it as missing)
	NAString string
}

// DefaultCSVConfig returns RFC 4180 output with a header and 6 decimals.
func DefaultCSVConfig() *CSVConfig {
	return &CSVConfig{
		Dialect:       DialectStandard,
		IncludeHeader: true,
		Precision:     6,
		NAString:      "NA",
	}
}

// TrajectoryHeader lists the columns written by WriteTrajectoryCSV.
var TrajectoryHeader = []string{
	"step", "magnetization", "avg_efficiency", "efficiency_defined", "avg_entropy", "avg_cond_info",
}

// WriteTrajectoryCSV writes one row per step. The avg_efficiency column holds
// NAString whenever any node efficiency of the step is undefined.
func WriteTrajectoryCSV(w io.Writer, traj []network.StepStats, cfg *CSVConfig) error {
	if cfg == nil {
		cfg = DefaultCSVConfig()
	}
	cw := newCSVWriter(w, cfg)
	if cfg.IncludeHeader {
		if err := cw.Write(TrajectoryHeader); err != nil {
			return fmt.Errorf("WriteTrajectoryCSV: header: %w", err)
		}
	}
	for _, s := range traj {
		eff := cfg.NAString
		if s.EfficiencyDefined {
			eff = formatFloat(s.AvgEfficiency, cfg.Precision)
		}
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Magnetization, cfg.Precision),
			eff,
			strconv.FormatBool(s.EfficiencyDefined),
			formatFloat(s.AvgEntropy, cfg.Precision),
			formatFloat(s.AvgCondInfo, cfg.Precision),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteTrajectoryCSV: step %d: %w", s.Step, err)
		}
	}
	return flush(cw, "WriteTrajectoryCSV")
}

// WriteCurveCSV writes (param, x, y) rows of a scan curve.
func WriteCurveCSV(w io.Writer, points []CurvePoint, xName, yName string, cfg *CSVConfig) error {
	if cfg == nil {
		cfg = DefaultCSVConfig()
	}
	cw := newCSVWriter(w, cfg)
	if cfg.IncludeHeader {
		if err := cw.Write([]string{"param", xName, yName}); err != nil {
			return fmt.Errorf("WriteCurveCSV: header: %w", err)
		}
	}
	for _, p := range points {
		row := []string{
			formatFloat(p.Param, cfg.Precision),
			formatFloat(p.X, cfg.Precision),
			formatFloat(p.Y, cfg.Precision),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteCurveCSV: %w", err)
		}
	}
	return flush(cw, "WriteCurveCSV")
}

func newCSVWriter(w io.Writer, cfg *CSVConfig) *csv.Writer {
	cw := csv.NewWriter(w)
	if cfg.Dialect == DialectTSV {
		cw.Comma = '\t'
	}
	return cw
}

func flush(cw *csv.Writer, method string) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: flush: %w", method, err)
	}
	return nil
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
