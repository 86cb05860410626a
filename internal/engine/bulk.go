package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

// BulkAction identifies the mutation applied across a bulk selection.
type BulkAction string

// Bulk action constants.
const (
	BulkComplete   BulkAction = "complete"
	BulkReschedule BulkAction = "reschedule"
)

// ItemError attributes a remote failure to the specific movement that
// caused it.
type ItemError struct {
	Err        error
	MovementID string
}

// BulkResult reports per-item outcomes of a bulk batch. There is no
// transactional guarantee: any subset of items may succeed while the rest
// fail, and successes are never rolled back.
type BulkResult struct {
	Succeeded []string
	Failed    []ItemError
	Requested int
	Eligible  int
}

// Coordinator applies a single mutation across a selected set of movements,
// issuing one independent store call per movement.
type Coordinator struct {
	store MovementStore
}

// NewCoordinator creates a bulk operation coordinator backed by the given store.
func NewCoordinator(store MovementStore) *Coordinator {
	return &Coordinator{store: store}
}

// eligible filters the selected ids down to movements that are still
// pending. Completed movements are excluded from dispatch entirely.
func eligible(movements []model.Movement, ids []string) []model.Movement {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var out []model.Movement
	for i := range movements {
		m := movements[i]
		if selected[m.ID] && m.IsPending() {
			out = append(out, m)
		}
	}
	return out
}

// Complete marks every pending movement in the selection as completed with
// its expected volume: bulk completion assumes the movement happened exactly
// as planned. When nothing in the selection is pending, no calls are issued.
func (c *Coordinator) Complete(ctx context.Context, movements []model.Movement, ids []string) BulkResult {
	targets := eligible(movements, ids)
	result := BulkResult{Requested: len(ids), Eligible: len(targets)}
	if len(targets) == 0 {
		return result
	}

	c.dispatch(ctx, targets, &result, func(ctx context.Context, m model.Movement) error {
		_, err := c.store.CompleteMovement(ctx, m.ID, m.ExpectedVolume)
		return err
	})
	return result
}

// Reschedule moves every pending movement in the selection to the given
// date. The date is required; without it the batch is rejected before any
// call is dispatched.
func (c *Coordinator) Reschedule(ctx context.Context, movements []model.Movement, ids []string, date model.CivilDate) (BulkResult, error) {
	if date.IsZero() {
		return BulkResult{}, common.NewValidationError("date", "reschedule date is required")
	}

	targets := eligible(movements, ids)
	result := BulkResult{Requested: len(ids), Eligible: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	c.dispatch(ctx, targets, &result, func(ctx context.Context, m model.Movement) error {
		patch := model.MovementUpdate{ScheduledDate: &date}
		_, err := c.store.UpdateMovement(ctx, m.ID, patch)
		return err
	})
	return result, nil
}

// dispatch fans out one store call per movement without waiting between
// them, then collects per-item outcomes. Failures do not stop or roll back
// the rest of the batch.
func (c *Coordinator) dispatch(ctx context.Context, targets []model.Movement, result *BulkResult, op func(context.Context, model.Movement) error) {
	type outcome struct {
		err error
		id  string
	}

	outcomes := make([]outcome, len(targets))
	var wg sync.WaitGroup

	for i, m := range targets {
		wg.Add(1)
		go func(i int, m model.Movement) {
			defer wg.Done()
			outcomes[i] = outcome{id: m.ID, err: op(ctx, m)}
		}(i, m)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, ItemError{MovementID: o.id, Err: o.err})
			slog.Error("Bulk operation item failed", "movement_id", o.id, "error", o.err)
		} else {
			result.Succeeded = append(result.Succeeded, o.id)
		}
	}
	sort.Strings(result.Succeeded)
}
