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

const testToday = model.CivilDate("2026-08-28")

func testExtractionResults() []model.ExtractionResult {
	exact := &model.MatchCandidate{TankID: "tank-a", TankName: "TK-201", Confidence: 100}
	fuzzy := &model.MatchCandidate{TankID: "tank-b", TankName: "TK-202", Confidence: 72}

	return []model.ExtractionResult{
		{
			Filename: "terminal-report-aug.pdf",
			Records: []model.RecordWithMatches{
				{
					Extracted: model.ExtractedMovement{
						TankName: "TK 201", LevelBefore: 500, LevelAfter: 900,
						Quantity: 400, Date: model.CivilDate("2026-08-20"), RowIndex: 0,
					},
					Type:         model.TypeLoad,
					Candidates:   []model.MatchCandidate{*exact},
					BestMatch:    exact,
					IsExactMatch: true,
				},
				{
					Extracted: model.ExtractedMovement{
						TankName: "TK 2O2", LevelBefore: 800, LevelAfter: 300,
						Quantity: 500, RowIndex: 1,
					},
					Type:       model.TypeDischarge,
					Candidates: []model.MatchCandidate{*fuzzy},
					BestMatch:  fuzzy,
				},
				{
					Extracted: model.ExtractedMovement{
						TankName: "no such tank", LevelBefore: 0, LevelAfter: 0,
						Quantity: 10, RowIndex: 2,
					},
					Type: model.TypeLoad,
				},
			},
			ExtractionErrors: []string{"row 4: unreadable volume"},
		},
	}
}

func TestReconciler_AutoSelectsExactMatches(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)

	exactKey := RecordKey{File: 0, Record: 0}
	require.True(t, r.IsSelected(exactKey))

	sel, ok := r.Selected(exactKey)
	require.True(t, ok)
	assert.Equal(t, "tank-a", sel.TankID)
	assert.Equal(t, model.TypeLoad, sel.Type)
	assert.InDelta(t, 400, sel.Volume, 0.001)
	assert.Equal(t, model.CivilDate("2026-08-20"), sel.Date)
	assert.Contains(t, sel.Notes, "terminal-report-aug.pdf")

	// Fuzzy and unmatched records start unselected.
	assert.False(t, r.IsSelected(RecordKey{File: 0, Record: 1}))
	assert.False(t, r.IsSelected(RecordKey{File: 0, Record: 2}))
	assert.Equal(t, 1, r.Count())
}

func TestReconciler_SelectDefaultsDateToToday(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)

	// Record 1 has no extracted date; selecting it falls back to today.
	key := RecordKey{File: 0, Record: 1}
	require.True(t, r.Select(key))
	sel, ok := r.Selected(key)
	require.True(t, ok)
	assert.Equal(t, testToday, sel.Date)
	assert.Equal(t, model.TypeDischarge, sel.Type)
}

func TestReconciler_ToggleIsIdempotentInPairs(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)

	tests := []struct {
		name            string
		key             RecordKey
		initiallyOn     bool
		togglableAtAll  bool
	}{
		{name: "exact match starts selected", key: RecordKey{0, 0}, initiallyOn: true, togglableAtAll: true},
		{name: "fuzzy match starts unselected", key: RecordKey{0, 1}, togglableAtAll: true},
		{name: "no candidates never selects", key: RecordKey{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.initiallyOn, r.IsSelected(tt.key))

			first := r.Toggle(tt.key)
			if tt.togglableAtAll {
				assert.Equal(t, !tt.initiallyOn, first)
			} else {
				assert.False(t, first)
			}

			r.Toggle(tt.key)
			assert.Equal(t, tt.initiallyOn, r.IsSelected(tt.key), "double toggle must restore original state")
		})
	}
}

func TestReconciler_NoCandidateRecordNeverSelectable(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)
	key := RecordKey{File: 0, Record: 2}

	assert.False(t, r.IsSelectable(key))
	assert.False(t, r.Select(key))
	assert.False(t, r.Toggle(key))
	assert.ErrorIs(t, r.ChangeTank(key, "tank-a"), common.ErrNoCandidates)
	assert.False(t, r.IsSelected(key))
	assert.Len(t, r.ImportItems(), 1, "only the auto-selected record may be present")
}

func TestReconciler_ChangeTankSelectsUnselectedRow(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)
	key := RecordKey{File: 0, Record: 1}

	require.False(t, r.IsSelected(key))
	require.NoError(t, r.ChangeTank(key, "tank-c"))

	assert.True(t, r.IsSelected(key), "changing the tank must opt the row in")
	sel, _ := r.Selected(key)
	assert.Equal(t, "tank-c", sel.TankID)
	// Other defaults still come from the best match.
	assert.InDelta(t, 500, sel.Volume, 0.001)
}

func TestReconciler_SetTankRequiresSelection(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)
	err := r.SetTank(RecordKey{File: 0, Record: 1}, "tank-c")
	assert.ErrorIs(t, err, common.ErrNotSelected)
}

func TestReconciler_ImportItemsAreDeterministic(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)
	require.True(t, r.Select(RecordKey{File: 0, Record: 1}))

	first := r.ImportItems()
	second := r.ImportItems()
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "tank-a", first[0].TankID)
	assert.Equal(t, "tank-b", first[1].TankID)
}

func TestReconciler_ConfirmClearsSelectionsOnSuccess(t *testing.T) {
	store := NewMockStore()
	r := NewReconciler(testExtractionResults(), testToday)

	result, err := r.Confirm(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 0, r.Count(), "selections are discarded after a successful confirm")
	require.Len(t, store.ConfirmedItems, 1)
}

func TestReconciler_ConfirmKeepsSelectionsOnFailure(t *testing.T) {
	store := NewMockStore()
	store.FailConfirm(errors.New("service unavailable"))
	r := NewReconciler(testExtractionResults(), testToday)

	_, err := r.Confirm(context.Background(), store)
	require.Error(t, err)
	assert.Equal(t, 1, r.Count(), "failed confirm must leave the session intact for retry")
}

func TestReconciler_ConfirmWithNothingSelected(t *testing.T) {
	store := NewMockStore()
	r := NewReconciler(nil, testToday)

	_, err := r.Confirm(context.Background(), store)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Empty(t, store.ConfirmedItems)
}

func TestReconciler_ResetDiscardsState(t *testing.T) {
	r := NewReconciler(testExtractionResults(), testToday)
	require.Equal(t, 1, r.Count())
	r.Reset()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.ImportItems())
}
