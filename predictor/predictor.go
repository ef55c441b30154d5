package predictor

import (
	"fmt"
	"slices"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosPredict marks a prediction. Item is the PC (uint32) and Detail is
// the predicted Outcome.
var HookPosPredict = &sim.HookPos{Name: "Predict"}

// HookPosTrain marks a training step. Item is the PC (uint32) and Detail is
// the resolved Outcome. The hook runs after the state update.
var HookPosTrain = &sim.HookPos{Name: "Train"}

// Predictor owns the tables and histories of one configured scheme.
//
// A Predictor is not safe for concurrent use. Predict and Train panic if
// the predictor has not been configured.
type Predictor struct {
	sim.HookableBase

	config Config
	scheme scheme
}

// New creates a predictor configured with cfg.
func New(cfg Config) (*Predictor, error) {
	p := &Predictor{}
	if err := p.Configure(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Configure validates cfg, releases any existing tables and allocates the
// tables the scheme needs, all in their initial state. On error the
// predictor is left unconfigured.
func (p *Predictor) Configure(cfg Config) error {
	p.Teardown()

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg = cfg.Effective()

	switch cfg.Scheme {
	case Static:
		p.scheme = staticScheme{}
	case Gshare:
		p.scheme = newGshare(cfg)
	case Tournament:
		p.scheme = newTournament(cfg, false)
	case Custom:
		p.scheme = newTournament(cfg, true)
	}
	p.config = cfg

	return nil
}

// Teardown releases all tables. It is a no-op on an unconfigured predictor.
func (p *Predictor) Teardown() {
	p.scheme = nil
	p.config = Config{}
}

// Configured reports whether the predictor holds a configured scheme.
func (p *Predictor) Configured() bool {
	return p.scheme != nil
}

// Config returns the effective configuration, with the custom scheme's
// fixed widths applied.
func (p *Predictor) Config() Config {
	return p.config
}

// Predict returns the predicted direction of the branch at pc. It does not
// change any predictor state.
func (p *Predictor) Predict(pc uint32) Outcome {
	s := p.mustScheme("Predict")
	o := s.predict(pc)

	if p.NumHooks() > 0 {
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosPredict,
			Item:   pc,
			Detail: o,
		})
	}

	return o
}

// Train updates the counters and histories with the resolved outcome of the
// branch at pc. It must follow Predict for the same branch. An outcome other
// than Taken or NotTaken is ignored.
func (p *Predictor) Train(pc uint32, outcome Outcome) {
	s := p.mustScheme("Train")
	if !outcome.Valid() {
		return
	}

	s.train(pc, outcome)

	if p.NumHooks() > 0 {
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosTrain,
			Item:   pc,
			Detail: outcome,
		})
	}
}

func (p *Predictor) mustScheme(op string) scheme {
	if p.scheme == nil {
		panic(fmt.Sprintf("predictor: %s called on an unconfigured predictor", op))
	}
	return p.scheme
}

// Snapshot is a copy of a predictor's state. Tables a scheme does not use
// are nil.
type Snapshot struct {
	Scheme Scheme
	GHR    uint32
	LHT    []uint32
	PHT    []Counter
	GHT    []Counter
	CHT    []Counter
}

// Snapshot copies the current predictor state.
func (p *Predictor) Snapshot() Snapshot {
	s := p.mustScheme("Snapshot")
	snap := Snapshot{Scheme: p.config.Scheme}

	switch st := s.(type) {
	case *gshareScheme:
		snap.GHR = st.ghr
		snap.GHT = slices.Clone(st.ght)
	case *tournamentScheme:
		snap.GHR = st.ghr
		snap.LHT = slices.Clone(st.lht)
		snap.PHT = slices.Clone(st.pht)
		snap.GHT = slices.Clone(st.ght)
		snap.CHT = slices.Clone(st.cht)
	}

	return snap
}
