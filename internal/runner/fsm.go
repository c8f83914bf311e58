package runner

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// newLeafFSM builds the per-leaf lifecycle state machine: pending, then
// running once dispatched to a worker, then either evaluated (a value was
// measured and the condition applied) or errored (the source or the store
// failed), and finally recorded once a MetricRecord has been produced for
// it. Every transition is logged at debug level; the FSM never blocks or
// fails a leaf on its own — callers ignore its Event() error, since a
// missed transition is a logging gap, not an execution fault.
func newLeafFSM(leaf string, logger zerolog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		"pending",
		[]fsm.EventDesc{
			{Name: "start", Src: []string{"pending"}, Dst: "running"},
			{Name: "evaluate", Src: []string{"running"}, Dst: "evaluated"},
			{Name: "error", Src: []string{"pending", "running", "evaluated"}, Dst: "errored"},
			{Name: "record", Src: []string{"evaluated", "errored"}, Dst: "recorded"},
		},
		map[string]fsm.Callback{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug().Str("leaf", leaf).Str("from", e.Src).Str("to", e.Dst).Msg("leaf transition")
			},
		},
	)
}
