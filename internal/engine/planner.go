package engine

import (
	"context"
	"fmt"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

// TargetPatch holds optional updates to a single transfer target.
// Nil fields are left unchanged.
type TargetPatch struct {
	TankID *string
	Volume *float64
}

// Planner builds and validates a multi-target transfer plan against the
// source tank's availability. Remaining volume is always recomputed from the
// current targets, never stored.
//
// Overdrawing the source is a hard validation error here: the store rejects
// insufficient feedstock anyway, so the plan fails fast instead of
// round-tripping a doomed submission.
type Planner struct {
	index        *Index
	sourceTankID string
	targets      []model.TransferTarget
}

// NewPlanner creates a transfer planner over the given tank registry snapshot.
func NewPlanner(index *Index) *Planner {
	return &Planner{index: index}
}

// SetSource selects the source tank for the plan.
func (p *Planner) SetSource(tankID string) {
	p.sourceTankID = tankID
}

// Source returns the currently selected source tank id.
func (p *Planner) Source() string {
	return p.sourceTankID
}

// Targets returns a copy of the current target list.
func (p *Planner) Targets() []model.TransferTarget {
	out := make([]model.TransferTarget, len(p.targets))
	copy(out, p.targets)
	return out
}

// AddTarget appends a new target defaulting to the first tank that is not
// already targeted and not the source. It reports whether a target was
// added; when every tank is taken it is a no-op.
func (p *Planner) AddTarget() bool {
	taken := make(map[string]bool, len(p.targets)+1)
	taken[p.sourceTankID] = true
	for _, t := range p.targets {
		taken[t.TankID] = true
	}

	for _, tank := range p.index.Tanks() {
		if !taken[tank.ID] {
			p.targets = append(p.targets, model.TransferTarget{TankID: tank.ID})
			return true
		}
	}
	return false
}

// UpdateTarget applies a patch to the target at index. Duplicate tank ids
// are tolerated here and rejected at validation time, not on every edit.
func (p *Planner) UpdateTarget(index int, patch TargetPatch) error {
	if index < 0 || index >= len(p.targets) {
		return fmt.Errorf("target index %d out of range", index)
	}
	if patch.TankID != nil {
		p.targets[index].TankID = *patch.TankID
	}
	if patch.Volume != nil {
		p.targets[index].Volume = *patch.Volume
	}
	return nil
}

// RemoveTarget deletes the target at index.
func (p *Planner) RemoveTarget(index int) error {
	if index < 0 || index >= len(p.targets) {
		return fmt.Errorf("target index %d out of range", index)
	}
	p.targets = append(p.targets[:index], p.targets[index+1:]...)
	return nil
}

// TotalVolume returns the sum of all target volumes.
func (p *Planner) TotalVolume() float64 {
	var total float64
	for _, t := range p.targets {
		total += t.Volume
	}
	return total
}

// RemainingVolume returns the source tank's current level minus the planned
// target volumes. Negative means the plan overdraws the source.
func (p *Planner) RemainingVolume() float64 {
	source, ok := p.index.Get(p.sourceTankID)
	if !ok {
		return -p.TotalVolume()
	}
	return source.CurrentLevel - p.TotalVolume()
}

// Validate checks the plan. It returns a ValidationError describing the
// first problem found: missing source, zero targets, a target without a
// tank, a target equal to the source, duplicate targets, non-positive
// volumes, or an overdrawn source.
func (p *Planner) Validate() error {
	if p.sourceTankID == "" {
		return common.NewValidationError("source", "source tank is required")
	}
	if _, ok := p.index.Get(p.sourceTankID); !ok {
		return common.NewValidationError("source", "source tank not found")
	}
	if len(p.targets) == 0 {
		return common.NewValidationError("targets", "at least one target is required")
	}

	seen := make(map[string]bool, len(p.targets))
	for i, t := range p.targets {
		field := fmt.Sprintf("targets[%d]", i)
		if t.TankID == "" {
			return common.NewValidationError(field, "target tank is required")
		}
		if t.TankID == p.sourceTankID {
			return common.NewValidationError(field, "target cannot equal source tank")
		}
		if _, ok := p.index.Get(t.TankID); !ok {
			return common.NewValidationError(field, "target tank not found")
		}
		if seen[t.TankID] {
			return common.NewValidationError(field, "duplicate target tank")
		}
		seen[t.TankID] = true
		if t.Volume <= 0 {
			return common.NewValidationError(field, "volume must be positive")
		}
	}

	if p.RemainingVolume() < 0 {
		return common.NewValidationError("targets",
			fmt.Sprintf("%v: plan exceeds source level by %.2f bbl", common.ErrInsufficientVolume, -p.RemainingVolume()))
	}
	return nil
}

// IsValid reports whether the plan would pass validation.
func (p *Planner) IsValid() bool {
	return p.Validate() == nil
}

// Plan materializes a validated transfer request.
func (p *Planner) Plan(scheduledDate model.CivilDate, notes string) (model.TransferCreate, error) {
	if err := p.Validate(); err != nil {
		return model.TransferCreate{}, err
	}
	if scheduledDate.IsZero() {
		return model.TransferCreate{}, common.NewValidationError("scheduledDate", "scheduled date is required")
	}
	return model.TransferCreate{
		SourceTankID:  p.sourceTankID,
		Targets:       p.Targets(),
		ScheduledDate: scheduledDate,
		Notes:         notes,
	}, nil
}

// Submit validates the plan and issues the create request to the store.
// The store creates one movement per target; there is no atomicity
// guarantee across targets and the engine performs no rollback.
func (p *Planner) Submit(ctx context.Context, store MovementStore, scheduledDate model.CivilDate, notes string) ([]model.Movement, error) {
	plan, err := p.Plan(scheduledDate, notes)
	if err != nil {
		return nil, err
	}
	created, err := store.CreateTransfer(ctx, plan)
	if err != nil {
		return created, fmt.Errorf("failed to create transfer: %w", err)
	}
	return created, nil
}
