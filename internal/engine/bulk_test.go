package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkMovements() []model.Movement {
	done := 100.0
	return []model.Movement{
		{ID: "m1", Type: model.TypeLoad, ExpectedVolume: 400, ScheduledDate: model.CivilDate("2026-08-25")},
		{ID: "m2", Type: model.TypeDischarge, ExpectedVolume: 150, ActualVolume: &done, ScheduledDate: model.CivilDate("2026-08-26")},
		{ID: "m3", Type: model.TypeLoad, ExpectedVolume: 90, ScheduledDate: model.CivilDate("2026-08-27")},
	}
}

func TestCoordinator_CompleteSkipsCompleted(t *testing.T) {
	store := NewMockStore()
	c := NewCoordinator(store)

	result := c.Complete(context.Background(), bulkMovements(), []string{"m1", "m2", "m3"})

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Eligible)
	assert.ElementsMatch(t, []string{"m1", "m3"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	// Exactly two remote calls; the completed movement is untouched.
	require.Len(t, store.CompleteCalls, 2)
	for _, call := range store.CompleteCalls {
		assert.NotEqual(t, "m2", call.MovementID)
	}
}

func TestCoordinator_CompleteUsesExpectedVolume(t *testing.T) {
	store := NewMockStore()
	c := NewCoordinator(store)

	result := c.Complete(context.Background(), bulkMovements(), []string{"m1"})
	require.Len(t, result.Succeeded, 1)
	require.Len(t, store.CompleteCalls, 1)
	assert.InDelta(t, 400, store.CompleteCalls[0].ActualVolume, 0.001,
		"bulk complete assumes the movement happened exactly as planned")
}

func TestCoordinator_EmptyEligibleSetIssuesNoCalls(t *testing.T) {
	store := NewMockStore()
	c := NewCoordinator(store)

	// Only the already-completed movement is selected.
	result := c.Complete(context.Background(), bulkMovements(), []string{"m2"})
	assert.Equal(t, 1, result.Requested)
	assert.Equal(t, 0, result.Eligible)
	assert.Empty(t, store.CompleteCalls)
}

func TestCoordinator_RescheduleIssuesOneCallPerPending(t *testing.T) {
	store := NewMockStore()
	c := NewCoordinator(store)
	date := model.CivilDate("2026-09-15")

	result, err := c.Reschedule(context.Background(), bulkMovements(), []string{"m1", "m2", "m3"}, date)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Eligible)

	require.Len(t, store.UpdateCalls, 2, "bulk reschedule of 3 with 1 completed issues exactly 2 calls")
	for _, call := range store.UpdateCalls {
		require.NotNil(t, call.Patch.ScheduledDate)
		assert.Equal(t, date, *call.Patch.ScheduledDate)
	}
}

func TestCoordinator_RescheduleRequiresDate(t *testing.T) {
	store := NewMockStore()
	c := NewCoordinator(store)

	_, err := c.Reschedule(context.Background(), bulkMovements(), []string{"m1"}, "")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Empty(t, store.UpdateCalls)
}

func TestCoordinator_PartialFailureKeepsOtherSuccesses(t *testing.T) {
	store := NewMockStore()
	store.FailMovement("m1", errors.New("connection reset"))
	c := NewCoordinator(store)

	result := c.Complete(context.Background(), bulkMovements(), []string{"m1", "m3"})

	assert.Equal(t, []string{"m3"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "m1", result.Failed[0].MovementID, "failures are attributable to the specific movement")
	assert.ErrorContains(t, result.Failed[0].Err, "connection reset")

	// The failure did not prevent the other call from being dispatched.
	require.Len(t, store.CompleteCalls, 1)
	assert.Equal(t, "m3", store.CompleteCalls[0].MovementID)
}
