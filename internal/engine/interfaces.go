package engine

import (
	"context"

	"github.com/camin-energy/tankflow/internal/model"
)

// MovementStore is the narrow slice of the external store the engine needs
// for submissions and bulk mutations. Each call is an independent
// fire-and-await request; the engine performs no retries and assumes no
// atomicity across calls.
type MovementStore interface {
	CreateTransfer(ctx context.Context, data model.TransferCreate) ([]model.Movement, error)
	UpdateMovement(ctx context.Context, id string, patch model.MovementUpdate) (*model.Movement, error)
	CompleteMovement(ctx context.Context, id string, actualVolume float64) (*model.Movement, error)
	ConfirmImport(ctx context.Context, items []model.ImportItem) (*model.ImportResult, error)
}
