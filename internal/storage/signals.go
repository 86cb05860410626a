package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
)

// ListPendingSignals returns signal movements that have not been assigned to
// a tank yet, oldest load date first.
func (s *SQLiteStorage) ListPendingSignals(ctx context.Context) ([]model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+movementColumns+`
		FROM movements
		WHERE source = ? AND tank_id IS NULL
		ORDER BY scheduled_date ASC, created_at ASC`, string(model.SourceSignal))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending signals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var movements []model.Movement
	for rows.Next() {
		movement, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		movements = append(movements, movement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending signals: %w", err)
	}
	return movements, nil
}

// SaveSignals stores parsed refinery signals as unassigned movements. A
// signal whose ID is already in the store is skipped, so re-uploading the
// same workbook is safe.
func (s *SQLiteStorage) SaveSignals(ctx context.Context, signals []model.ParsedSignal) (created, skipped int, err error) {
	if err := validateContext(ctx); err != nil {
		return 0, 0, err
	}
	if err := validateSignals(signals); err != nil {
		return 0, 0, err
	}

	for _, sig := range signals {
		var exists int
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM movements WHERE signal_id = ?`, sig.SignalID).Scan(&exists)
		if err != nil {
			return created, skipped, fmt.Errorf("failed to check signal %s: %w", sig.SignalID, err)
		}
		if exists > 0 {
			skipped++
			continue
		}

		id := uuid.New().String()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO movements (id, type, expected_volume, scheduled_date, source, signal_id, source_tank)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, string(model.TypeLoad), sig.Volume, string(sig.LoadDate),
			string(model.SourceSignal), sig.SignalID, sig.RefineryTank)
		if err != nil {
			return created, skipped, fmt.Errorf("failed to save signal %s: %w", sig.SignalID, err)
		}
		created++
	}
	return created, skipped, nil
}

// AssignSignal binds an unassigned signal movement to a registry tank. The
// assignment may override the signalled volume and date.
func (s *SQLiteStorage) AssignSignal(ctx context.Context, movementID string, data model.SignalAssignment) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(data.TankID, "tankID"); err != nil {
		return nil, err
	}

	movement, err := s.GetMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.Source != model.SourceSignal {
		return nil, fmt.Errorf("%w: movement %s", common.ErrNotSignal, movementID)
	}
	if movement.TankID != "" {
		return nil, fmt.Errorf("%w: movement %s", common.ErrAlreadyAssigned, movementID)
	}

	if _, err := s.getTank(ctx, data.TankID); err != nil {
		return nil, err
	}

	volume := movement.ExpectedVolume
	if data.ExpectedVolume > 0 {
		volume = data.ExpectedVolume
	}
	date := movement.ScheduledDate
	if !data.ScheduledDate.IsZero() {
		date = data.ScheduledDate
	}
	notes := movement.Notes
	if data.Notes != "" {
		notes = data.Notes
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE movements SET tank_id = ?, expected_volume = ?, scheduled_date = ?, notes = ? WHERE id = ?`,
		data.TankID, volume, nullString(string(date)), notes, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign signal: %w", err)
	}

	return s.GetMovement(ctx, movementID)
}

// UpdateTradeInfo records the trade linkage on a signal movement.
func (s *SQLiteStorage) UpdateTradeInfo(ctx context.Context, movementID string, data model.TradeInfo) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	movement, err := s.GetMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.Source != model.SourceSignal {
		return nil, fmt.Errorf("%w: movement %s", common.ErrNotSignal, movementID)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE movements SET trade_number = ?, trade_line_item = ? WHERE id = ?`,
		nullString(data.TradeNumber), nullString(data.TradeLineItem), movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade info: %w", err)
	}

	return s.GetMovement(ctx, movementID)
}
