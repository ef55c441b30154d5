// Package predictor models hardware branch-direction predictors.
//
// A Predictor answers "taken or not taken" for a conditional branch PC and
// learns from the resolved outcome afterwards. The harness must call Predict
// and then Train for every branch, in program order.
package predictor

// Outcome is the direction of a conditional branch.
type Outcome uint8

const (
	// NotTaken means the branch falls through.
	NotTaken Outcome = 0
	// Taken means the branch jumps to its target.
	Taken Outcome = 1
)

// Valid reports whether o is one of NotTaken or Taken.
func (o Outcome) Valid() bool {
	return o == NotTaken || o == Taken
}

func (o Outcome) String() string {
	switch o {
	case NotTaken:
		return "N"
	case Taken:
		return "T"
	default:
		return "?"
	}
}

// Counter is a 2-bit saturating counter.
// States: 0=Strongly Not Taken, 1=Weakly Not Taken, 2=Weakly Taken,
// 3=Strongly Taken.
type Counter uint8

const (
	// SN is the strongly not-taken state.
	SN Counter = iota
	// WN is the weakly not-taken state.
	WN
	// WT is the weakly taken state.
	WT
	// ST is the strongly taken state.
	ST
)

// Advance moves the counter one step toward ST, saturating at ST. Both
// Advance and Retreat clamp a value above ST to ST.
func (c Counter) Advance() Counter {
	if c < ST {
		return c + 1
	}
	return ST
}

// Retreat moves the counter one step toward SN, saturating at SN.
func (c Counter) Retreat() Counter {
	if c > ST {
		return ST
	}
	if c > SN {
		return c - 1
	}
	return SN
}

// Update applies one outcome of evidence. An invalid outcome leaves the
// counter unchanged.
func (c Counter) Update(o Outcome) Counter {
	switch o {
	case Taken:
		return c.Advance()
	case NotTaken:
		return c.Retreat()
	default:
		return c
	}
}

// Prediction returns the direction encoded by the counter's top bit.
func (c Counter) Prediction() Outcome {
	return Outcome((c >> 1) & 1)
}

func (c Counter) String() string {
	switch c {
	case SN:
		return "SN"
	case WN:
		return "WN"
	case WT:
		return "WT"
	case ST:
		return "ST"
	default:
		return "??"
	}
}

// newTable allocates a table of n counters, all in the given state.
func newTable(n uint32, init Counter) []Counter {
	t := make([]Counter, n)
	for i := range t {
		t[i] = init
	}
	return t
}
