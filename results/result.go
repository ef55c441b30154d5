// Package results records and reports predictor runs.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/trace"
)

// Result holds the outcome of running one predictor over one trace.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Trace names the branch trace that was simulated.
	Trace string `json:"trace"`

	// Scheme and the widths are the effective predictor configuration.
	Scheme       string `json:"scheme"`
	GHistoryBits int    `json:"ghistory_bits"`
	LHistoryBits int    `json:"lhistory_bits"`
	PCIndexBits  int    `json:"pc_index_bits"`

	// Branches is the number of predicted branches.
	Branches uint64 `json:"branches"`

	// Incorrect is the number of mispredicted branches.
	Incorrect uint64 `json:"incorrect"`

	// MispredictionRate is Incorrect / Branches as a percentage.
	MispredictionRate float64 `json:"misprediction_rate"`

	// WallTime is the actual time taken to run the simulation.
	WallTime time.Duration `json:"wall_time_ns"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at"`
}

// NewResult builds a Result with a fresh RunID.
func NewResult(traceName string, cfg predictor.Config, stats trace.Stats, wall time.Duration) Result {
	return Result{
		RunID:             uuid.New().String(),
		Trace:             traceName,
		Scheme:            cfg.Scheme.String(),
		GHistoryBits:      cfg.GHistoryBits,
		LHistoryBits:      cfg.LHistoryBits,
		PCIndexBits:       cfg.PCIndexBits,
		Branches:          stats.Branches,
		Incorrect:         stats.Incorrect,
		MispredictionRate: stats.MispredictionRate(),
		WallTime:          wall,
		CreatedAt:         time.Now().UTC(),
	}
}

// Print writes the classic predictor report.
func Print(w io.Writer, r Result) {
	_, _ = fmt.Fprintf(w, "Branches:        %10d\n", r.Branches)
	_, _ = fmt.Fprintf(w, "Incorrect:       %10d\n", r.Incorrect)
	_, _ = fmt.Fprintf(w, "Misprediction Rate: %10.3f\n", r.MispredictionRate)
}

// PrintJSON writes results as an indented JSON array.
func PrintJSON(w io.Writer, rs []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// PrintCSV writes results in CSV format for easy comparison.
func PrintCSV(w io.Writer, rs []Result) {
	_, _ = fmt.Fprintln(w,
		"run_id,trace,scheme,ghistory_bits,lhistory_bits,pc_index_bits,branches,incorrect,misprediction_rate")

	for _, r := range rs {
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%d,%d,%d,%d,%d,%.3f\n",
			r.RunID,
			r.Trace,
			r.Scheme,
			r.GHistoryBits,
			r.LHistoryBits,
			r.PCIndexBits,
			r.Branches,
			r.Incorrect,
			r.MispredictionRate,
		)
	}
}
