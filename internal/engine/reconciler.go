package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

// RecordKey addresses one extracted record within a reconciliation session:
// document index within the batch, record index within the document.
type RecordKey struct {
	File   int
	Record int
}

// Selection is the import decision for one extracted record. Selections are
// session-local state with no persisted identity; they are discarded after a
// successful confirm or an explicit reset.
type Selection struct {
	TankID string
	Type   model.MovementType
	Notes  string
	Date   model.CivilDate
	Volume float64
}

// Reconciler turns extraction results into a selectable, overridable mapping
// of record to tank, volume, and date. Exact matches are selected
// automatically on construction; everything else starts unselected. A record
// with no candidates can never be selected.
//
// The reconciler is owned by a single reconciliation session and is not safe
// for concurrent use.
type Reconciler struct {
	selections map[RecordKey]Selection
	results    []model.ExtractionResult
	today      model.CivilDate
}

// NewReconciler builds a reconciliation session over a batch of extraction
// results. For every record whose best match is exact, a selection is
// pre-populated with the matched tank, the extracted quantity, the extracted
// date (or today when the document carried none), and a provenance note
// naming the source document.
func NewReconciler(results []model.ExtractionResult, today model.CivilDate) *Reconciler {
	r := &Reconciler{
		selections: make(map[RecordKey]Selection),
		results:    results,
		today:      today,
	}

	for fileIdx, res := range results {
		for recIdx, rec := range res.Records {
			if rec.IsExactMatch && rec.BestMatch != nil {
				key := RecordKey{File: fileIdx, Record: recIdx}
				r.selections[key] = r.defaultSelection(rec, res.Filename)
			}
		}
	}
	return r
}

// defaultSelection builds the selection a record receives when first opted in.
func (r *Reconciler) defaultSelection(rec model.RecordWithMatches, filename string) Selection {
	date := rec.Extracted.Date
	if date.IsZero() {
		date = r.today
	}
	return Selection{
		TankID: rec.BestMatch.TankID,
		Type:   rec.Type,
		Volume: rec.Extracted.Quantity,
		Date:   date,
		Notes:  fmt.Sprintf("Imported from %s", filename),
	}
}

// Results returns the extraction results the session was built over.
func (r *Reconciler) Results() []model.ExtractionResult {
	return r.results
}

func (r *Reconciler) record(key RecordKey) (model.RecordWithMatches, string, bool) {
	if key.File < 0 || key.File >= len(r.results) {
		return model.RecordWithMatches{}, "", false
	}
	res := r.results[key.File]
	if key.Record < 0 || key.Record >= len(res.Records) {
		return model.RecordWithMatches{}, "", false
	}
	return res.Records[key.Record], res.Filename, true
}

// IsSelected reports whether the record at key is currently selected.
func (r *Reconciler) IsSelected(key RecordKey) bool {
	_, ok := r.selections[key]
	return ok
}

// IsSelectable reports whether the record at key can be selected at all.
// Records with no candidates are permanently unselectable.
func (r *Reconciler) IsSelectable(key RecordKey) bool {
	rec, _, ok := r.record(key)
	return ok && len(rec.Candidates) > 0
}

// Selected returns the selection for key, if present.
func (r *Reconciler) Selected(key RecordKey) (Selection, bool) {
	sel, ok := r.selections[key]
	return sel, ok
}

// Select opts the record at key into the import, populating the selection
// from its best match. Selecting an already-selected record keeps the
// existing selection, including any tank override. It reports whether the
// record is selected afterwards; a record with no best match cannot be
// selected and the call is a no-op.
func (r *Reconciler) Select(key RecordKey) bool {
	if _, ok := r.selections[key]; ok {
		return true
	}
	rec, filename, ok := r.record(key)
	if !ok || rec.BestMatch == nil {
		return false
	}
	r.selections[key] = r.defaultSelection(rec, filename)
	return true
}

// Deselect removes the record at key from the import.
func (r *Reconciler) Deselect(key RecordKey) {
	delete(r.selections, key)
}

// Toggle flips the selection state of the record at key and reports whether
// it is selected afterwards. Toggling the same key twice restores its
// original presence state.
func (r *Reconciler) Toggle(key RecordKey) bool {
	if r.IsSelected(key) {
		r.Deselect(key)
		return false
	}
	return r.Select(key)
}

// SetTank overrides the tank on an existing selection.
func (r *Reconciler) SetTank(key RecordKey, tankID string) error {
	sel, ok := r.selections[key]
	if !ok {
		return common.ErrNotSelected
	}
	sel.TankID = tankID
	r.selections[key] = sel
	return nil
}

// ChangeTank changes the tank for the record at key, opting the record in
// first when it is not yet selected. This is the select-then-set composition
// the reconciliation UI relies on: picking a tank for an unselected row both
// selects the row and applies the new tank.
func (r *Reconciler) ChangeTank(key RecordKey, tankID string) error {
	if !r.Select(key) {
		return common.ErrNoCandidates
	}
	return r.SetTank(key, tankID)
}

// Count returns the number of selected records.
func (r *Reconciler) Count() int {
	return len(r.selections)
}

// ImportItems materializes the current selections into import-confirm
// requests, ordered by record key for deterministic output.
func (r *Reconciler) ImportItems() []model.ImportItem {
	keys := make([]RecordKey, 0, len(r.selections))
	for key := range r.selections {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].File != keys[j].File {
			return keys[i].File < keys[j].File
		}
		return keys[i].Record < keys[j].Record
	})

	items := make([]model.ImportItem, 0, len(keys))
	for _, key := range keys {
		sel := r.selections[key]
		items = append(items, model.ImportItem{
			TankID: sel.TankID,
			Type:   sel.Type,
			Volume: sel.Volume,
			Date:   sel.Date,
			Notes:  sel.Notes,
		})
	}
	return items
}

// Confirm sends the selected records to the store. The selection map is
// cleared only after the confirm call succeeds; on failure the session state
// is left untouched so the user can retry. Per-item failures inside a
// successful confirm are reported in the result, not as an error.
func (r *Reconciler) Confirm(ctx context.Context, store MovementStore) (*model.ImportResult, error) {
	items := r.ImportItems()
	if len(items) == 0 {
		return nil, common.NewValidationError("selection", "no records selected")
	}
	result, err := store.ConfirmImport(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm import: %w", err)
	}
	r.Reset()
	return result, nil
}

// Reset discards all selection state.
func (r *Reconciler) Reset() {
	r.selections = make(map[RecordKey]Selection)
}
