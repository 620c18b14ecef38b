package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestCanTransition_HappyPath(t *testing.T) {
	order := []types.RunState{
		types.StateInitiated,
		types.StateFilteringGlobal,
		types.StateNaming,
		types.StateGeneratingSections,
		types.StateAssembling,
		types.StateCompiling,
		types.StateComplete,
	}
	for i := 0; i < len(order)-1; i++ {
		assert.True(t, CanTransition(order[i], order[i+1]), "%s -> %s", order[i], order[i+1])
	}
}

func TestCanTransition_FailedReachableFromNonTerminal(t *testing.T) {
	for _, from := range []types.RunState{
		types.StateInitiated,
		types.StateFilteringGlobal,
		types.StateNaming,
		types.StateGeneratingSections,
		types.StateAssembling,
		types.StateCompiling,
	} {
		assert.True(t, CanTransition(from, types.StateFailed), "from %s", from)
	}
}

func TestCanTransition_RejectsSkipsAndReversals(t *testing.T) {
	assert.False(t, CanTransition(types.StateInitiated, types.StateNaming))
	assert.False(t, CanTransition(types.StateNaming, types.StateFilteringGlobal))
	assert.False(t, CanTransition(types.StateInitiated, types.StateComplete))
	assert.False(t, CanTransition(types.StateAssembling, types.StateAssembling))
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	all := []types.RunState{
		types.StateInitiated,
		types.StateFilteringGlobal,
		types.StateNaming,
		types.StateGeneratingSections,
		types.StateAssembling,
		types.StateCompiling,
		types.StateComplete,
		types.StateFailed,
	}
	for _, to := range all {
		assert.False(t, CanTransition(types.StateComplete, to), "complete -> %s", to)
		assert.False(t, CanTransition(types.StateFailed, to), "failed -> %s", to)
	}
}

func TestAdvance_RejectsIllegalTransition(t *testing.T) {
	run := types.NewGenerationRun(types.JobDescription{RawText: "jd"}, "Ada")
	require.NoError(t, advance(run, types.StateFilteringGlobal))

	err := advance(run, types.StateCompiling)
	require.Error(t, err)
	assert.Equal(t, types.StateFilteringGlobal, run.State)
}
