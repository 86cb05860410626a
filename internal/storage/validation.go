package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/camin-energy/tankflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidTank    = errors.New("invalid tank")
	ErrInvalidVolume  = errors.New("volume must be positive")
	ErrInvalidType    = errors.New("invalid movement type")
	ErrInvalidSignal  = errors.New("invalid signal")
	ErrInvalidTargets = errors.New("invalid transfer targets")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTankCreate validates the fields for a new tank registration.
func validateTankCreate(data model.TankCreate) error {
	if strings.TrimSpace(data.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTank)
	}
	if data.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidTank)
	}
	if data.InitialLevel < 0 {
		return fmt.Errorf("%w: initial level cannot be negative", ErrInvalidTank)
	}
	if data.InitialLevel > data.Capacity {
		return fmt.Errorf("%w: initial level exceeds capacity", ErrInvalidTank)
	}
	return nil
}

// validateMovementCreate validates the fields for a new movement.
func validateMovementCreate(data model.MovementCreate) error {
	switch data.Type {
	case model.TypeLoad, model.TypeDischarge, model.TypeTransfer:
	case model.TypeAdjustment:
		return fmt.Errorf("%w: adjustments are created from physical readings", ErrInvalidType)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidType, data.Type)
	}

	if err := validateString(data.TankID, "tankID"); err != nil {
		return err
	}
	if data.ExpectedVolume <= 0 {
		return ErrInvalidVolume
	}
	if data.Type == model.TypeTransfer {
		if strings.TrimSpace(data.TargetTankID) == "" {
			return fmt.Errorf("%w: transfer requires a target tank", ErrInvalidTargets)
		}
		if data.TargetTankID == data.TankID {
			return fmt.Errorf("%w: target tank must differ from source", ErrInvalidTargets)
		}
	}
	return nil
}

// validateTransferCreate validates a multi-target transfer plan.
func validateTransferCreate(data model.TransferCreate) error {
	if err := validateString(data.SourceTankID, "sourceTankID"); err != nil {
		return err
	}
	if len(data.Targets) == 0 {
		return fmt.Errorf("%w: at least one target is required", ErrInvalidTargets)
	}

	seen := make(map[string]bool, len(data.Targets))
	for i, target := range data.Targets {
		if strings.TrimSpace(target.TankID) == "" {
			return fmt.Errorf("%w: target %d is missing a tank", ErrInvalidTargets, i)
		}
		if target.TankID == data.SourceTankID {
			return fmt.Errorf("%w: target %d equals the source tank", ErrInvalidTargets, i)
		}
		if seen[target.TankID] {
			return fmt.Errorf("%w: duplicate target tank %s", ErrInvalidTargets, target.TankID)
		}
		seen[target.TankID] = true
		if target.Volume <= 0 {
			return fmt.Errorf("%w: target %d", ErrInvalidVolume, i)
		}
	}
	return nil
}

// validateSignals validates a batch of parsed refinery signals.
func validateSignals(signals []model.ParsedSignal) error {
	for i, sig := range signals {
		if strings.TrimSpace(sig.SignalID) == "" {
			return fmt.Errorf("%w: signal %d is missing an ID", ErrInvalidSignal, i)
		}
		if sig.Volume <= 0 {
			return fmt.Errorf("%w: signal %s", ErrInvalidVolume, sig.SignalID)
		}
	}
	return nil
}
