package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/rrtucci/ising-dbnet/network"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// Params records the inputs of a run.
type Params struct {
	Beta     float64 `json:"beta"`
	JJ       float64 `json:"jj"`
	H        float64 `json:"h"`
	Lam      float64 `json:"lam"`
	Gate     string  `json:"gate"`
	Topology string  `json:"topology"`
	Sites    int     `json:"sites"`
	Steps    int     `json:"steps"`
	Prior    string  `json:"prior"`
	P0       float64 `json:"p0"`
	Order    string  `json:"order"`
	Workers  int     `json:"workers"`
	Seed     int64   `json:"seed"`
}

// RunRecord is a complete stored run: parameters, trajectory and the final
// Y-layer snapshot in id order.
type RunRecord struct {
	SchemaVersion int                 `json:"schema_version"`
	CodecVersion  int                 `json:"codec_version"`
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	Params        Params              `json:"params"`
	Trajectory    []network.StepStats `json:"trajectory"`
	Reason        string              `json:"reason"`
	StepsRun      int                 `json:"steps_run"`
	Final         [][2]float64        `json:"final"`
}

// NewRunRecord stamps a fresh id, the current time and codec versions.
func NewRunRecord(params Params, res network.Result, final [][2]float64) RunRecord {
	return RunRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Params:        params,
		Trajectory:    res.Trajectory,
		Reason:        res.Reason.String(),
		StepsRun:      res.StepsRun,
		Final:         final,
	}
}

// Summary returns the listing view of the record.
func (r RunRecord) Summary() RunSummary {
	s := RunSummary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		StepsRun:  r.StepsRun,
		Reason:    r.Reason,
	}
	if n := len(r.Trajectory); n > 0 {
		s.Magnetization = r.Trajectory[n-1].Magnetization
	}
	return s
}
