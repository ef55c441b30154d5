package trace

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/predictor"
)

// EventLogger is a hook that writes one line per predictor event.
type EventLogger struct {
	w io.Writer
}

// NewEventLogger creates an EventLogger writing to w.
func NewEventLogger(w io.Writer) *EventLogger {
	return &EventLogger{w: w}
}

// Func implements sim.Hook.
func (l *EventLogger) Func(ctx sim.HookCtx) {
	pc, _ := ctx.Item.(uint32)
	outcome, _ := ctx.Detail.(predictor.Outcome)

	switch ctx.Pos {
	case predictor.HookPosPredict:
		_, _ = fmt.Fprintf(l.w, "predict pc=0x%08x -> %v\n", pc, outcome)
	case predictor.HookPosTrain:
		_, _ = fmt.Fprintf(l.w, "train   pc=0x%08x outcome=%v\n", pc, outcome)
	}
}
