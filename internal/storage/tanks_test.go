package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

func TestCreateTank(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tank, err := store.CreateTank(ctx, model.TankCreate{
		Name:         "TK-101",
		Location:     "North Terminal",
		Capacity:     5000,
		InitialLevel: 1200,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tank.ID)
	assert.Equal(t, "TK-101", tank.Name)
	assert.Equal(t, "North Terminal", tank.Location)
	assert.InDelta(t, 5000, tank.Capacity, 0.001)
	assert.InDelta(t, 1200, tank.InitialLevel, 0.001)
	assert.InDelta(t, 1200, tank.CurrentLevel, 0.001)
	assert.False(t, tank.CreatedAt.IsZero())
}

func TestCreateTank_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data model.TankCreate
	}{
		{name: "missing name", data: model.TankCreate{Capacity: 100}},
		{name: "zero capacity", data: model.TankCreate{Name: "TK-1"}},
		{name: "negative initial level", data: model.TankCreate{Name: "TK-1", Capacity: 100, InitialLevel: -5}},
		{name: "initial level over capacity", data: model.TankCreate{Name: "TK-1", Capacity: 100, InitialLevel: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateTank(ctx, tt.data)
			assert.ErrorIs(t, err, ErrInvalidTank)
		})
	}
}

func TestCreateTank_DuplicateName(t *testing.T) {
	store := createTestStorage(t)
	seedTank(t, store, "TK-101", 5000, 0)

	_, err := store.CreateTank(context.Background(), model.TankCreate{Name: "TK-101", Capacity: 1000})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestGetTank_NotFound(t *testing.T) {
	store := createTestStorage(t)
	_, err := store.GetTank(context.Background(), "no-such-tank")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListTanks_SortedByName(t *testing.T) {
	store := createTestStorage(t)
	seedTank(t, store, "TK-300", 1000, 0)
	seedTank(t, store, "TK-100", 1000, 0)
	seedTank(t, store, "TK-200", 1000, 0)

	tanks, err := store.ListTanks(context.Background())
	require.NoError(t, err)
	require.Len(t, tanks, 3)
	assert.Equal(t, "TK-100", tanks[0].Name)
	assert.Equal(t, "TK-200", tanks[1].Name)
	assert.Equal(t, "TK-300", tanks[2].Name)
}

func TestUpdateTank(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	tank := seedTank(t, store, "TK-101", 5000, 100)

	newName := "TK-101 Renamed"
	newCapacity := 6000.0
	updated, err := store.UpdateTank(ctx, tank.ID, model.TankUpdate{
		Name:     &newName,
		Capacity: &newCapacity,
	})
	require.NoError(t, err)
	assert.Equal(t, "TK-101 Renamed", updated.Name)
	assert.InDelta(t, 6000, updated.Capacity, 0.001)
	// Untouched fields stay put
	assert.Equal(t, "Test Terminal", updated.Location)
	assert.InDelta(t, 100, updated.InitialLevel, 0.001)
}

func TestUpdateTank_RejectsBadPatch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	tank := seedTank(t, store, "TK-101", 5000, 0)

	empty := "  "
	_, err := store.UpdateTank(ctx, tank.ID, model.TankUpdate{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidTank)

	zero := 0.0
	_, err = store.UpdateTank(ctx, tank.ID, model.TankUpdate{Capacity: &zero})
	assert.ErrorIs(t, err, ErrInvalidTank)
}

func TestTankLevel_DerivedFromMovements(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	tank := seedTank(t, store, "TK-101", 5000, 1000)

	_, err := store.CreateMovement(ctx, model.MovementCreate{
		Type:           model.TypeLoad,
		TankID:         tank.ID,
		ExpectedVolume: 400,
		ScheduledDate:  model.Today(),
	})
	require.NoError(t, err)

	_, err = store.CreateMovement(ctx, model.MovementCreate{
		Type:           model.TypeDischarge,
		TankID:         tank.ID,
		ExpectedVolume: 250,
		ScheduledDate:  model.Today(),
	})
	require.NoError(t, err)

	got, err := store.GetTank(ctx, tank.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1150, got.CurrentLevel, 0.001)
}
