package pipeline

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// transitions is the legal state graph for a generation run. Failed is
// reachable from every non-terminal state; terminal states allow nothing.
var transitions = map[types.RunState][]types.RunState{
	types.StateInitiated:          {types.StateFilteringGlobal, types.StateFailed},
	types.StateFilteringGlobal:    {types.StateNaming, types.StateFailed},
	types.StateNaming:             {types.StateGeneratingSections, types.StateFailed},
	types.StateGeneratingSections: {types.StateAssembling, types.StateFailed},
	types.StateAssembling:         {types.StateCompiling, types.StateFailed},
	types.StateCompiling:          {types.StateComplete, types.StateFailed},
	types.StateComplete:           {},
	types.StateFailed:             {},
}

// CanTransition reports whether a run may move from one state to another.
func CanTransition(from, to types.RunState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// advance moves the run to the next state, rejecting any transition the
// state graph does not allow.
func advance(run *types.GenerationRun, to types.RunState) error {
	if !CanTransition(run.State, to) {
		return fmt.Errorf("illegal run transition %q -> %q", run.State, to)
	}
	run.State = to
	return nil
}
