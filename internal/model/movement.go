// Package model defines the core domain models used throughout the application.
package model

import "time"

// MovementType identifies the kind of inventory movement.
type MovementType string

// Movement type constants.
const (
	TypeLoad       MovementType = "load"
	TypeDischarge  MovementType = "discharge"
	TypeTransfer   MovementType = "transfer"
	TypeAdjustment MovementType = "adjustment"
)

// MovementSource records where a movement originated.
type MovementSource string

// Movement source constants.
const (
	SourceManual   MovementSource = "manual"
	SourceSignal   MovementSource = "signal"
	SourceDocument MovementSource = "document"
)

// MovementStatus is derived from whether an actual volume has been recorded.
type MovementStatus string

// Movement status constants.
const (
	StatusPending   MovementStatus = "pending"
	StatusCompleted MovementStatus = "completed"
)

// Movement represents a scheduled or completed change in a tank's inventory.
// ActualVolume == nil means the movement is still pending; once set the
// movement is completed and no longer editable.
type Movement struct {
	CreatedAt      time.Time
	ActualVolume   *float64
	ID             string
	Type           MovementType
	TankID         string
	TargetTankID   string // only set for transfers
	Notes          string
	Source         MovementSource
	ScheduledDate  CivilDate
	ExpectedVolume float64

	// Signal metadata, set when the movement was created from a refinery signal.
	SignalID      string
	SourceTank    string // refinery-side tank name
	TradeNumber   string
	TradeLineItem string
}

// IsPending reports whether the movement has not yet been completed.
func (m *Movement) IsPending() bool {
	return m.ActualVolume == nil
}

// Status derives the movement status from the actual volume.
func (m *Movement) Status() MovementStatus {
	if m.IsPending() {
		return StatusPending
	}
	return StatusCompleted
}

// EffectiveVolume returns the actual volume when recorded, otherwise the
// expected volume.
func (m *Movement) EffectiveVolume() float64 {
	if m.ActualVolume != nil {
		return *m.ActualVolume
	}
	return m.ExpectedVolume
}

// EffectiveDate returns the scheduled date, falling back to the creation date
// for records that never received one.
func (m *Movement) EffectiveDate() CivilDate {
	if !m.ScheduledDate.IsZero() {
		return m.ScheduledDate
	}
	return NewCivilDate(m.CreatedAt)
}

// MovementCreate holds the fields required to schedule a new movement.
type MovementCreate struct {
	Type           MovementType
	TankID         string
	TargetTankID   string
	Notes          string
	Source         MovementSource
	ScheduledDate  CivilDate
	ExpectedVolume float64
}

// MovementUpdate holds optional fields for editing a pending movement.
// Nil fields are left unchanged.
type MovementUpdate struct {
	ScheduledDate  *CivilDate
	ExpectedVolume *float64
	Notes          *string
}

// TransferTarget is one destination tank within a multi-target transfer plan.
type TransferTarget struct {
	TankID string
	Volume float64
}

// TransferCreate describes a transfer from one source tank to one or more
// target tanks. The store creates one movement per target; there is no
// atomicity guarantee across them.
type TransferCreate struct {
	SourceTankID  string
	Notes         string
	ScheduledDate CivilDate
	Targets       []TransferTarget
}

// AdjustmentCreate describes a physical-reading adjustment. The resulting
// movement is created already completed: its actual volume is the signed
// delta between the physical reading and the system level.
type AdjustmentCreate struct {
	TankID        string
	Notes         string
	PhysicalLevel float64
}
