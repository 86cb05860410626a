package engine

import (
	"testing"

	"github.com/camin-energy/tankflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMovements() []model.Movement {
	completed := 380.0
	return []model.Movement{
		{
			ID: "m1", Type: model.TypeLoad, TankID: "tank-a",
			ExpectedVolume: 400, ActualVolume: &completed,
			ScheduledDate: model.CivilDate("2026-08-20"),
			Source:        model.SourceSignal, Notes: "vessel alpha discharge",
		},
		{
			ID: "m2", Type: model.TypeTransfer, TankID: "tank-src", TargetTankID: "tank-b",
			ExpectedVolume: 250,
			ScheduledDate:  model.CivilDate("2026-09-05"),
			Source:         model.SourceManual,
		},
		{
			ID: "m3", Type: model.TypeDischarge, TankID: "tank-c",
			ExpectedVolume: 120,
			ScheduledDate:  model.CivilDate("2026-08-28"),
			Source:         model.SourceDocument, Notes: "monthly draw",
		},
	}
}

func TestProject_IsPure(t *testing.T) {
	index := NewIndex(testTanks())
	movements := testMovements()
	filters := Filters{Status: model.StatusPending}

	first := Project(movements, index, filters, testToday)
	second := Project(movements, index, filters, testToday)
	assert.Equal(t, first, second, "identical inputs must project identically")
}

func TestProject_StatusAndFuture(t *testing.T) {
	index := NewIndex(testTanks())
	rows := Project(testMovements(), index, Filters{}, testToday)
	require.Len(t, rows, 3)

	byID := make(map[string]Row, len(rows))
	for _, row := range rows {
		byID[row.Movement.ID] = row
	}

	assert.Equal(t, model.StatusCompleted, byID["m1"].Status)
	assert.InDelta(t, 380, byID["m1"].Volume, 0.001, "completed rows show the actual volume")
	assert.False(t, byID["m1"].IsFuture)

	assert.Equal(t, model.StatusPending, byID["m2"].Status)
	assert.True(t, byID["m2"].IsFuture)

	assert.False(t, byID["m3"].IsFuture, "scheduled today is not future")
}

func TestProject_TransferLabel(t *testing.T) {
	index := NewIndex(testTanks())
	rows := Project(testMovements(), index, Filters{Type: model.TypeTransfer}, testToday)
	require.Len(t, rows, 1)
	assert.Equal(t, "TK-100 → TK-202", rows[0].TankLabel)
}

func TestProject_UnknownTank(t *testing.T) {
	index := NewIndex(nil)
	rows := Project(testMovements(), index, Filters{Type: model.TypeLoad}, testToday)
	require.Len(t, rows, 1)
	assert.Equal(t, UnknownTankName, rows[0].TankLabel)
}

func TestProject_Filters(t *testing.T) {
	index := NewIndex(testTanks())
	movements := testMovements()

	tests := []struct {
		name    string
		filters Filters
		wantIDs []string
	}{
		{name: "no filters", filters: Filters{}, wantIDs: []string{"m1", "m2", "m3"}},
		{name: "by type", filters: Filters{Type: model.TypeDischarge}, wantIDs: []string{"m3"}},
		{name: "by status pending", filters: Filters{Status: model.StatusPending}, wantIDs: []string{"m2", "m3"}},
		{name: "by status completed", filters: Filters{Status: model.StatusCompleted}, wantIDs: []string{"m1"}},
		{name: "by source", filters: Filters{Source: model.SourceSignal}, wantIDs: []string{"m1"}},
		{name: "search tank name", filters: Filters{Search: "tk-202"}, wantIDs: []string{"m2"}},
		{name: "search notes", filters: Filters{Search: "VESSEL"}, wantIDs: []string{"m1"}},
		{name: "search type", filters: Filters{Search: "discharge"}, wantIDs: []string{"m1", "m3"}},
		{
			name:    "filters compose with AND",
			filters: Filters{Status: model.StatusPending, Search: "monthly"},
			wantIDs: []string{"m3"},
		},
		{
			name:    "conflicting filters yield nothing",
			filters: Filters{Type: model.TypeLoad, Status: model.StatusPending},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Project(movements, index, tt.filters, testToday)
			gotIDs := make([]string, 0, len(rows))
			for _, row := range rows {
				gotIDs = append(gotIDs, row.Movement.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}
