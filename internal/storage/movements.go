package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

// allMovements is the unfiltered movement query.
var allMovements service.MovementFilter

const movementColumns = `id, type, tank_id, target_tank_id, expected_volume, actual_volume,
	scheduled_date, notes, source, signal_id, source_tank, trade_number, trade_line_item, created_at`

// ListMovements returns movements matching the filter, newest first.
func (s *SQLiteStorage) ListMovements(ctx context.Context, filter service.MovementFilter) ([]model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + movementColumns + ` FROM movements`
	var conditions []string
	var args []any

	if filter.TankID != "" {
		conditions = append(conditions, "(tank_id = ? OR target_tank_id = ?)")
		args = append(args, filter.TankID, filter.TankID)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, string(filter.Source))
	}
	switch filter.Status {
	case model.StatusPending:
		conditions = append(conditions, "actual_volume IS NULL")
	case model.StatusCompleted:
		conditions = append(conditions, "actual_volume IS NOT NULL")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scheduled_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
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
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}
	return movements, nil
}

// movementsInvolvingTank returns every movement that touches the tank on
// either side.
func (s *SQLiteStorage) movementsInvolvingTank(ctx context.Context, tankID string) ([]model.Movement, error) {
	return s.ListMovements(ctx, service.MovementFilter{TankID: tankID})
}

// GetMovement returns a single movement by ID.
func (s *SQLiteStorage) GetMovement(ctx context.Context, id string) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id)
	movement, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: movement %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return &movement, nil
}

// CreateMovement schedules a new movement. Discharges and transfers are
// rejected when the source tank does not hold enough feedstock to cover the
// expected volume.
func (s *SQLiteStorage) CreateMovement(ctx context.Context, data model.MovementCreate) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMovementCreate(data); err != nil {
		return nil, err
	}

	tank, err := s.GetTank(ctx, data.TankID)
	if err != nil {
		return nil, err
	}

	if data.Type == model.TypeTransfer {
		if _, err := s.getTank(ctx, data.TargetTankID); err != nil {
			return nil, err
		}
	}

	if data.Type == model.TypeDischarge || data.Type == model.TypeTransfer {
		if data.ExpectedVolume > tank.CurrentLevel {
			return nil, fmt.Errorf("%w: tank %s holds %.1f bbl, requested %.1f bbl",
				common.ErrInsufficientVolume, tank.Name, tank.CurrentLevel, data.ExpectedVolume)
		}
	}

	source := data.Source
	if source == "" {
		source = model.SourceManual
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO movements (id, type, tank_id, target_tank_id, expected_volume, scheduled_date, notes, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(data.Type), data.TankID, nullString(data.TargetTankID),
		data.ExpectedVolume, nullString(string(data.ScheduledDate)), data.Notes, string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	return s.GetMovement(ctx, id)
}

// CreateTransfer schedules one transfer movement per target. Movements are
// created sequentially with no rollback; a failure partway returns the
// movements created so far alongside the error.
func (s *SQLiteStorage) CreateTransfer(ctx context.Context, data model.TransferCreate) ([]model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransferCreate(data); err != nil {
		return nil, err
	}

	source, err := s.GetTank(ctx, data.SourceTankID)
	if err != nil {
		return nil, err
	}
	for _, target := range data.Targets {
		if _, err := s.getTank(ctx, target.TankID); err != nil {
			return nil, err
		}
	}

	var total float64
	for _, target := range data.Targets {
		total += target.Volume
	}
	if total > source.CurrentLevel {
		return nil, fmt.Errorf("%w: tank %s holds %.1f bbl, plan moves %.1f bbl",
			common.ErrInsufficientVolume, source.Name, source.CurrentLevel, total)
	}

	created := make([]model.Movement, 0, len(data.Targets))
	for _, target := range data.Targets {
		movement, createErr := s.CreateMovement(ctx, model.MovementCreate{
			Type:           model.TypeTransfer,
			TankID:         data.SourceTankID,
			TargetTankID:   target.TankID,
			ExpectedVolume: target.Volume,
			ScheduledDate:  data.ScheduledDate,
			Notes:          data.Notes,
			Source:         model.SourceManual,
		})
		if createErr != nil {
			return created, fmt.Errorf("transfer to tank %s failed: %w", target.TankID, createErr)
		}
		created = append(created, *movement)
	}
	return created, nil
}

// UpdateMovement applies a partial update to a pending movement. Completed
// movements are immutable.
func (s *SQLiteStorage) UpdateMovement(ctx context.Context, id string, patch model.MovementUpdate) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !movement.IsPending() {
		return nil, fmt.Errorf("%w: movement %s", common.ErrAlreadyCompleted, id)
	}

	if patch.ScheduledDate != nil {
		movement.ScheduledDate = *patch.ScheduledDate
	}
	if patch.ExpectedVolume != nil {
		if *patch.ExpectedVolume <= 0 {
			return nil, ErrInvalidVolume
		}
		movement.ExpectedVolume = *patch.ExpectedVolume
	}
	if patch.Notes != nil {
		movement.Notes = *patch.Notes
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE movements SET scheduled_date = ?, expected_volume = ?, notes = ? WHERE id = ?`,
		nullString(string(movement.ScheduledDate)), movement.ExpectedVolume, movement.Notes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}

	return s.GetMovement(ctx, id)
}

// CompleteMovement records the actual volume for a pending movement, marking
// it completed.
func (s *SQLiteStorage) CompleteMovement(ctx context.Context, id string, actualVolume float64) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if actualVolume <= 0 {
		return nil, ErrInvalidVolume
	}

	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !movement.IsPending() {
		return nil, fmt.Errorf("%w: movement %s", common.ErrAlreadyCompleted, id)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE movements SET actual_volume = ? WHERE id = ?`, actualVolume, id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete movement: %w", err)
	}

	return s.GetMovement(ctx, id)
}

// CreateAdjustment reconciles the system level with a physical reading. The
// resulting movement is created already completed; its volume is the signed
// delta between the reading and the derived level.
func (s *SQLiteStorage) CreateAdjustment(ctx context.Context, data model.AdjustmentCreate) (*model.Movement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(data.TankID, "tankID"); err != nil {
		return nil, err
	}
	if data.PhysicalLevel < 0 {
		return nil, fmt.Errorf("%w: physical level cannot be negative", ErrInvalidTank)
	}

	tank, err := s.GetTank(ctx, data.TankID)
	if err != nil {
		return nil, err
	}

	delta := model.AdjustmentDelta(tank.CurrentLevel, data.PhysicalLevel)
	notes := data.Notes
	if notes == "" {
		if delta >= 0 {
			notes = fmt.Sprintf("Physical reading %.1f bbl: inventory gain of %.1f bbl", data.PhysicalLevel, delta)
		} else {
			notes = fmt.Sprintf("Physical reading %.1f bbl: inventory loss of %.1f bbl", data.PhysicalLevel, -delta)
		}
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO movements (id, type, tank_id, expected_volume, actual_volume, scheduled_date, notes, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(model.TypeAdjustment), data.TankID, delta, delta,
		string(model.Today()), notes, string(model.SourceManual))
	if err != nil {
		return nil, fmt.Errorf("failed to create adjustment: %w", err)
	}

	return s.GetMovement(ctx, id)
}

// DeleteMovement removes a movement from the store.
func (s *SQLiteStorage) DeleteMovement(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: movement %s", common.ErrNotFound, id)
	}
	return nil
}

// ConfirmImport writes confirmed document records as movements. Items are
// processed independently; a failed item is reported and never rolls back
// the others.
func (s *SQLiteStorage) ConfirmImport(ctx context.Context, items []model.ImportItem) (*model.ImportResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	result := &model.ImportResult{}
	for i, item := range items {
		_, err := s.CreateMovement(ctx, model.MovementCreate{
			Type:           item.Type,
			TankID:         item.TankID,
			ExpectedVolume: item.Volume,
			ScheduledDate:  item.Date,
			Notes:          item.Notes,
			Source:         model.SourceDocument,
		})
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.CreatedCount++
	}
	return result, nil
}

func scanMovement(row rowScanner) (model.Movement, error) {
	var m model.Movement
	var tankID, targetTankID, scheduledDate, signalID, sourceTank, tradeNumber, tradeLineItem sql.NullString
	var actualVolume sql.NullFloat64

	err := row.Scan(&m.ID, (*string)(&m.Type), &tankID, &targetTankID, &m.ExpectedVolume, &actualVolume,
		&scheduledDate, &m.Notes, (*string)(&m.Source), &signalID, &sourceTank, &tradeNumber, &tradeLineItem, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movement{}, err
		}
		return model.Movement{}, fmt.Errorf("failed to scan movement: %w", err)
	}

	m.TankID = tankID.String
	m.TargetTankID = targetTankID.String
	m.ScheduledDate = model.CivilDate(scheduledDate.String)
	m.SignalID = signalID.String
	m.SourceTank = sourceTank.String
	m.TradeNumber = tradeNumber.String
	m.TradeLineItem = tradeLineItem.String
	if actualVolume.Valid {
		v := actualVolume.Float64
		m.ActualVolume = &v
	}
	return m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
