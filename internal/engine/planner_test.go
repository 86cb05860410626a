package engine

import (
	"context"
	"testing"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTanks() []model.Tank {
	return []model.Tank{
		{ID: "tank-src", Name: "TK-100", Location: "North", Capacity: 2000, CurrentLevel: 1000},
		{ID: "tank-a", Name: "TK-201", Location: "North", Capacity: 1500, CurrentLevel: 200},
		{ID: "tank-b", Name: "TK-202", Location: "South", Capacity: 1500, CurrentLevel: 0},
		{ID: "tank-c", Name: "TK-203", Location: "South", Capacity: 800, CurrentLevel: 100},
	}
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestPlanner_RemainingVolume(t *testing.T) {
	p := NewPlanner(NewIndex(testTanks()))
	p.SetSource("tank-src")

	require.True(t, p.AddTarget())
	require.NoError(t, p.UpdateTarget(0, TargetPatch{TankID: strPtr("tank-a"), Volume: floatPtr(400)}))
	assert.InDelta(t, 600, p.RemainingVolume(), 0.001)

	require.True(t, p.AddTarget())
	require.NoError(t, p.UpdateTarget(1, TargetPatch{TankID: strPtr("tank-b"), Volume: floatPtr(300)}))
	assert.InDelta(t, 300, p.RemainingVolume(), 0.001)

	// Overdraw: remaining goes negative and validation rejects the plan.
	require.True(t, p.AddTarget())
	require.NoError(t, p.UpdateTarget(2, TargetPatch{TankID: strPtr("tank-c"), Volume: floatPtr(400)}))
	assert.InDelta(t, -100, p.RemainingVolume(), 0.001)
	assert.False(t, p.IsValid())

	// Removing the overdraw restores validity.
	require.NoError(t, p.RemoveTarget(2))
	assert.InDelta(t, 300, p.RemainingVolume(), 0.001)
	assert.True(t, p.IsValid())
}

func TestPlanner_Validate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		targets []model.TransferTarget
		wantOK  bool
	}{
		{
			name:    "valid single target",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-a", Volume: 100}},
			wantOK:  true,
		},
		{
			name:    "no source",
			source:  "",
			targets: []model.TransferTarget{{TankID: "tank-a", Volume: 100}},
		},
		{
			name:   "no targets",
			source: "tank-src",
		},
		{
			name:    "zero volume",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-a", Volume: 0}},
		},
		{
			name:    "negative volume",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-a", Volume: -5}},
		},
		{
			name:   "missing tank id",
			source: "tank-src",
			targets: []model.TransferTarget{
				{TankID: "tank-a", Volume: 100},
				{TankID: "", Volume: 50},
			},
		},
		{
			name:   "duplicate target tank",
			source: "tank-src",
			targets: []model.TransferTarget{
				{TankID: "tank-a", Volume: 100},
				{TankID: "tank-a", Volume: 50},
			},
		},
		{
			name:    "target equals source",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-src", Volume: 100}},
		},
		{
			name:    "unknown target tank",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-zz", Volume: 100}},
		},
		{
			name:    "overdraws source",
			source:  "tank-src",
			targets: []model.TransferTarget{{TankID: "tank-a", Volume: 1500}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(NewIndex(testTanks()))
			p.SetSource(tt.source)
			for range tt.targets {
				p.AddTarget()
			}
			for i, target := range tt.targets {
				tgt := target
				require.NoError(t, p.UpdateTarget(i, TargetPatch{TankID: &tgt.TankID, Volume: &tgt.Volume}))
			}

			err := p.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, common.IsValidation(err), "expected a validation error, got %v", err)
			}
		})
	}
}

func TestPlanner_AddTargetDefaults(t *testing.T) {
	p := NewPlanner(NewIndex(testTanks()))
	p.SetSource("tank-src")

	// Defaults skip the source and previously targeted tanks, in registry order.
	require.True(t, p.AddTarget())
	require.True(t, p.AddTarget())
	require.True(t, p.AddTarget())
	targets := p.Targets()
	require.Len(t, targets, 3)
	assert.Equal(t, "tank-a", targets[0].TankID)
	assert.Equal(t, "tank-b", targets[1].TankID)
	assert.Equal(t, "tank-c", targets[2].TankID)

	// Every tank is taken: no-op.
	assert.False(t, p.AddTarget())
	assert.Len(t, p.Targets(), 3)
}

func TestPlanner_AddTargetEmptyRegistry(t *testing.T) {
	p := NewPlanner(NewIndex(nil))
	p.SetSource("tank-src")
	assert.False(t, p.AddTarget())
}

func TestPlanner_Submit(t *testing.T) {
	store := NewMockStore()
	p := NewPlanner(NewIndex(testTanks()))
	p.SetSource("tank-src")
	require.True(t, p.AddTarget())
	require.NoError(t, p.UpdateTarget(0, TargetPatch{Volume: floatPtr(250)}))

	created, err := p.Submit(context.Background(), store, model.CivilDate("2026-09-01"), "monthly rebalance")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "tank-src", created[0].TankID)
	assert.Equal(t, "tank-a", created[0].TargetTankID)
	assert.InDelta(t, 250, created[0].ExpectedVolume, 0.001)

	require.Len(t, store.TransferCalls, 1)
	assert.Equal(t, model.CivilDate("2026-09-01"), store.TransferCalls[0].ScheduledDate)
}

func TestPlanner_SubmitInvalidPlanIssuesNoCalls(t *testing.T) {
	store := NewMockStore()
	p := NewPlanner(NewIndex(testTanks()))

	_, err := p.Submit(context.Background(), store, model.CivilDate("2026-09-01"), "")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Empty(t, store.TransferCalls)
}
