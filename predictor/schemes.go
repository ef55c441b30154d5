package predictor

// scheme is one prediction algorithm together with the state it owns.
type scheme interface {
	predict(pc uint32) Outcome
	train(pc uint32, o Outcome)
}

// staticScheme predicts every branch taken and keeps no state.
type staticScheme struct{}

func (staticScheme) predict(uint32) Outcome { return Taken }

func (staticScheme) train(uint32, Outcome) {}

// gshareScheme indexes a single global table by GHR XOR PC.
type gshareScheme struct {
	ghr   uint32
	gMask uint32
	ght   []Counter
}

func newGshare(cfg Config) *gshareScheme {
	gMask := mask(cfg.GHistoryBits)
	return &gshareScheme{
		gMask: gMask,
		ght:   newTable(gMask+1, WN),
	}
}

func (g *gshareScheme) index(pc uint32) uint32 {
	return (g.ghr ^ pc) & g.gMask
}

func (g *gshareScheme) predict(pc uint32) Outcome {
	return g.ght[g.index(pc)].Prediction()
}

func (g *gshareScheme) train(pc uint32, o Outcome) {
	idx := g.index(pc)
	g.ght[idx] = g.ght[idx].Update(o)
	g.ghr = shiftIn(g.ghr, o, g.gMask)
}

// tournamentScheme combines a per-PC local-history predictor and a global
// predictor through a table of choice counters. A choice counter below WT
// selects the local side.
//
// With foldPC set, the global and choice tables are indexed by GHR XOR PC
// (the custom hybrid); otherwise by GHR alone.
type tournamentScheme struct {
	foldPC bool

	ghr    uint32
	gMask  uint32
	lMask  uint32
	pcMask uint32

	lht []uint32  // local histories, indexed by PC
	pht []Counter // local pattern counters, indexed by local history
	ght []Counter // global counters
	cht []Counter // choice counters
}

func newTournament(cfg Config, foldPC bool) *tournamentScheme {
	t := &tournamentScheme{
		foldPC: foldPC,
		gMask:  mask(cfg.GHistoryBits),
		lMask:  mask(cfg.LHistoryBits),
		pcMask: mask(cfg.PCIndexBits),
	}

	t.lht = make([]uint32, t.pcMask+1)
	t.pht = newTable(t.lMask+1, WN)
	t.ght = newTable(t.gMask+1, WN)
	t.cht = newTable(t.gMask+1, WT)

	return t
}

// globalIndex indexes both the global and the choice table.
func (t *tournamentScheme) globalIndex(pc uint32) uint32 {
	if t.foldPC {
		return (t.ghr ^ pc) & t.gMask
	}
	return t.ghr & t.gMask
}

func (t *tournamentScheme) localIndex(pc uint32) uint32 {
	return t.lht[pc&t.pcMask] & t.lMask
}

func (t *tournamentScheme) predict(pc uint32) Outcome {
	gIdx := t.globalIndex(pc)
	if t.cht[gIdx].Prediction() == NotTaken {
		return t.pht[t.localIndex(pc)].Prediction()
	}
	return t.ght[gIdx].Prediction()
}

func (t *tournamentScheme) train(pc uint32, o Outcome) {
	gIdx := t.globalIndex(pc)
	lIdx := t.localIndex(pc)

	localRight := t.pht[lIdx].Prediction() == o
	globalRight := t.ght[gIdx].Prediction() == o

	switch {
	case localRight && !globalRight:
		t.cht[gIdx] = t.cht[gIdx].Retreat()
	case globalRight && !localRight:
		t.cht[gIdx] = t.cht[gIdx].Advance()
	}

	t.pht[lIdx] = t.pht[lIdx].Update(o)
	t.ght[gIdx] = t.ght[gIdx].Update(o)

	pcIdx := pc & t.pcMask
	t.lht[pcIdx] = shiftIn(t.lht[pcIdx], o, t.lMask)
	t.ghr = shiftIn(t.ghr, o, t.gMask)
}
