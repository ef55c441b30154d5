package trace

import (
	"errors"
	"io"

	"github.com/sarchlab/bpsim/predictor"
)

// Stats holds the accuracy counts of a trace run.
type Stats struct {
	// Branches is the number of branches predicted and trained.
	Branches uint64
	// Incorrect is the number of mispredicted branches.
	Incorrect uint64
	// Ignored is the number of records with an outcome other than taken or
	// not taken. They are neither predicted nor counted as branches.
	Ignored uint64
}

// Correct returns the number of correctly predicted branches.
func (s Stats) Correct() uint64 {
	return s.Branches - s.Incorrect
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Incorrect) / float64(s.Branches) * 100
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Correct()) / float64(s.Branches) * 100
}

// Runner feeds branches through a predictor in predict-then-train order.
type Runner struct {
	// MaxBranches stops a run after this many branches. Zero means no
	// limit.
	MaxBranches uint64

	predictor *predictor.Predictor
	stats     Stats
}

// NewRunner creates a runner around a configured predictor.
func NewRunner(p *predictor.Predictor) *Runner {
	return &Runner{predictor: p}
}

// Step predicts and then trains one branch. It returns whether the
// prediction was correct. Records with an invalid outcome are skipped.
func (r *Runner) Step(b Branch) bool {
	if !b.Outcome.Valid() {
		r.stats.Ignored++
		return false
	}

	pred := r.predictor.Predict(b.PC)
	r.predictor.Train(b.PC, b.Outcome)

	r.stats.Branches++
	if pred != b.Outcome {
		r.stats.Incorrect++
		return false
	}
	return true
}

// Run drives every record of the trace through the predictor and returns
// the accumulated statistics.
func (r *Runner) Run(tr *Reader) (Stats, error) {
	for r.MaxBranches == 0 || r.stats.Branches < r.MaxBranches {
		b, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r.stats, err
		}
		r.Step(b)
	}

	return r.stats, nil
}

// Stats returns the statistics accumulated so far.
func (r *Runner) Stats() Stats {
	return r.stats
}

// Reset clears the statistics. Predictor state is not touched.
func (r *Runner) Reset() {
	r.stats = Stats{}
}
