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
)

// ListTanks returns all registered tanks with their current levels derived
// from the movement history.
func (s *SQLiteStorage) ListTanks(ctx context.Context) ([]model.Tank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, capacity, initial_level, created_at
		FROM tanks
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tanks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tanks []model.Tank
	for rows.Next() {
		tank, scanErr := scanTank(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tanks = append(tanks, tank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tanks: %w", err)
	}

	movements, err := s.ListMovements(ctx, allMovements)
	if err != nil {
		return nil, err
	}

	for i := range tanks {
		tanks[i] = model.WithLevel(tanks[i], movements)
	}
	return tanks, nil
}

// GetTank returns a single tank with its current level.
func (s *SQLiteStorage) GetTank(ctx context.Context, id string) (*model.Tank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	tank, err := s.getTank(ctx, id)
	if err != nil {
		return nil, err
	}

	movements, err := s.movementsInvolvingTank(ctx, id)
	if err != nil {
		return nil, err
	}

	withLevel := model.WithLevel(*tank, movements)
	return &withLevel, nil
}

// CreateTank registers a new tank. Tank names are unique.
func (s *SQLiteStorage) CreateTank(ctx context.Context, data model.TankCreate) (*model.Tank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTankCreate(data); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tanks (id, name, location, capacity, initial_level)
		VALUES (?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(data.Name), data.Location, data.Capacity, data.InitialLevel)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("%w: tank name %q", common.ErrDuplicateEntry, data.Name)
		}
		return nil, fmt.Errorf("failed to create tank: %w", err)
	}

	return s.GetTank(ctx, id)
}

// UpdateTank applies a partial update to an existing tank. Nil patch fields
// are left unchanged.
func (s *SQLiteStorage) UpdateTank(ctx context.Context, id string, patch model.TankUpdate) (*model.Tank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	tank, err := s.getTank(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: missing name", ErrInvalidTank)
		}
		tank.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Location != nil {
		tank.Location = *patch.Location
	}
	if patch.Capacity != nil {
		if *patch.Capacity <= 0 {
			return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidTank)
		}
		tank.Capacity = *patch.Capacity
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tanks SET name = ?, location = ?, capacity = ? WHERE id = ?`,
		tank.Name, tank.Location, tank.Capacity, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("%w: tank name %q", common.ErrDuplicateEntry, tank.Name)
		}
		return nil, fmt.Errorf("failed to update tank: %w", err)
	}

	return s.GetTank(ctx, id)
}

// getTank loads a tank row without deriving its level.
func (s *SQLiteStorage) getTank(ctx context.Context, id string) (*model.Tank, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, initial_level, created_at
		FROM tanks
		WHERE id = ?`, id)

	tank, err := scanTank(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tank %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return &tank, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTank(row rowScanner) (model.Tank, error) {
	var tank model.Tank
	err := row.Scan(&tank.ID, &tank.Name, &tank.Location, &tank.Capacity, &tank.InitialLevel, &tank.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tank{}, err
		}
		return model.Tank{}, fmt.Errorf("failed to scan tank: %w", err)
	}
	return tank, nil
}
