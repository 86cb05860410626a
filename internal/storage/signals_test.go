package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

func testSignals() []model.ParsedSignal {
	return []model.ParsedSignal{
		{SignalID: "SIG-001", RefineryTank: "RF-TK-01", LoadDate: model.CivilDate("2026-09-01"), Volume: 1200},
		{SignalID: "SIG-002", RefineryTank: "RF-TK-02", LoadDate: model.CivilDate("2026-09-03"), Volume: 800},
	}
}

func TestSaveSignals_DedupesBySignalID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, skipped, err := store.SaveSignals(ctx, testSignals())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	// Re-uploading the same workbook creates nothing new
	created, skipped, err = store.SaveSignals(ctx, testSignals())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)

	pending, err := store.ListPendingSignals(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	first := pending[0]
	assert.Equal(t, "SIG-001", first.SignalID)
	assert.Equal(t, "RF-TK-01", first.SourceTank)
	assert.Equal(t, model.TypeLoad, first.Type)
	assert.Equal(t, model.SourceSignal, first.Source)
	assert.Empty(t, first.TankID)
	assert.True(t, first.IsPending())
}

func TestAssignSignal(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	tank := seedTank(t, store, "TK-101", 5000, 0)

	_, _, err := store.SaveSignals(ctx, testSignals())
	require.NoError(t, err)
	pending, err := store.ListPendingSignals(ctx)
	require.NoError(t, err)

	assigned, err := store.AssignSignal(ctx, pending[0].ID, model.SignalAssignment{
		TankID:         tank.ID,
		ExpectedVolume: 1150,
		Notes:          "volume trued up against nomination",
	})
	require.NoError(t, err)
	assert.Equal(t, tank.ID, assigned.TankID)
	assert.InDelta(t, 1150, assigned.ExpectedVolume, 0.001)
	assert.Equal(t, "volume trued up against nomination", assigned.Notes)
	// Signalled date survives when the assignment doesn't override it
	assert.Equal(t, model.CivilDate("2026-09-01"), assigned.ScheduledDate)

	// The signal is no longer pending assignment
	remaining, err := store.ListPendingSignals(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// Assigning twice is an error
	_, err = store.AssignSignal(ctx, assigned.ID, model.SignalAssignment{TankID: tank.ID})
	assert.ErrorIs(t, err, common.ErrAlreadyAssigned)
}

func TestAssignSignal_RejectsNonSignalMovement(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	tank := seedTank(t, store, "TK-101", 5000, 1000)

	movement, err := store.CreateMovement(ctx, model.MovementCreate{
		Type: model.TypeLoad, TankID: tank.ID, ExpectedVolume: 100, ScheduledDate: model.Today(),
	})
	require.NoError(t, err)

	_, err = store.AssignSignal(ctx, movement.ID, model.SignalAssignment{TankID: tank.ID})
	assert.ErrorIs(t, err, common.ErrNotSignal)
}

func TestUpdateTradeInfo(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, _, err := store.SaveSignals(ctx, testSignals())
	require.NoError(t, err)
	pending, err := store.ListPendingSignals(ctx)
	require.NoError(t, err)

	updated, err := store.UpdateTradeInfo(ctx, pending[0].ID, model.TradeInfo{
		TradeNumber:   "TR-2026-041",
		TradeLineItem: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "TR-2026-041", updated.TradeNumber)
	assert.Equal(t, "3", updated.TradeLineItem)

	// Trade info only applies to signal movements
	tank := seedTank(t, store, "TK-101", 5000, 1000)
	manual, err := store.CreateMovement(ctx, model.MovementCreate{
		Type: model.TypeLoad, TankID: tank.ID, ExpectedVolume: 100, ScheduledDate: model.Today(),
	})
	require.NoError(t, err)
	_, err = store.UpdateTradeInfo(ctx, manual.ID, model.TradeInfo{TradeNumber: "TR-1"})
	assert.ErrorIs(t, err, common.ErrNotSignal)
}

func TestSaveSignals_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, _, err := store.SaveSignals(ctx, []model.ParsedSignal{{RefineryTank: "RF", Volume: 10}})
	assert.ErrorIs(t, err, ErrInvalidSignal)

	_, _, err = store.SaveSignals(ctx, []model.ParsedSignal{{SignalID: "SIG-X", Volume: 0}})
	assert.ErrorIs(t, err, ErrInvalidVolume)
}
