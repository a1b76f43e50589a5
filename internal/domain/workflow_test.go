package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWorkflowStage(t *testing.T) {
	for _, value := range []string{"pending", "assigned", "picking", "packed", "dispatched"} {
		stage, err := NewWorkflowStage(value)
		require.NoError(t, err)
		require.Equal(t, value, stage.String())
	}

	_, err := NewWorkflowStage("shipped")
	require.ErrorIs(t, err, ErrInvalidWorkflowStage)

	_, err = NewWorkflowStage("")
	require.ErrorIs(t, err, ErrInvalidWorkflowStage)
}

func TestStagesOrderAndLifecycle(t *testing.T) {
	stages := Stages()
	require.Equal(t, []WorkflowStage{StagePending, StageAssigned, StagePicking, StagePacked, StageDispatched}, stages)

	require.True(t, StagePending.IsInitial())
	require.True(t, StageDispatched.IsTerminal())

	require.False(t, StagePending.IsActive())
	require.True(t, StageAssigned.IsActive())
	require.True(t, StagePicking.IsActive())
	require.True(t, StagePacked.IsActive())
	require.False(t, StageDispatched.IsActive())
}

func TestWorkflowStageTextRoundTrip(t *testing.T) {
	text, err := StagePicking.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "picking", string(text))

	var stage WorkflowStage
	require.NoError(t, stage.UnmarshalText(text))
	require.True(t, stage.Equals(StagePicking))

	require.ErrorIs(t, stage.UnmarshalText([]byte("returned")), ErrInvalidWorkflowStage)
}

func TestWorkflowStatePickedFor(t *testing.T) {
	var nilState *WorkflowState
	require.Equal(t, 0.0, nilState.PickedFor("P1"))

	state := &WorkflowState{OrderID: "ORD-1", Stage: StagePicking}
	require.Equal(t, 0.0, state.PickedFor("P1"))

	state.PickedQty = map[string]float64{"P1": 4}
	require.Equal(t, 4.0, state.PickedFor("P1"))
	require.Equal(t, 0.0, state.PickedFor("P2"))
}
