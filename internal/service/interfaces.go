// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/camin-energy/tankflow/internal/model"
)

// MovementFilter defines filtering options for movement queries.
type MovementFilter struct {
	TankID string
	Type   model.MovementType
	Status model.MovementStatus
	Source model.MovementSource
	Limit  int
	Offset int
}

// Storage defines the contract for the tank registry and movement store.
// The reconciliation engine consumes this interface and treats the store as
// the source of truth; it never assumes atomicity across multiple calls.
type Storage interface {
	// Tank operations
	ListTanks(ctx context.Context) ([]model.Tank, error)
	GetTank(ctx context.Context, id string) (*model.Tank, error)
	CreateTank(ctx context.Context, data model.TankCreate) (*model.Tank, error)
	UpdateTank(ctx context.Context, id string, patch model.TankUpdate) (*model.Tank, error)

	// Movement operations
	ListMovements(ctx context.Context, filter MovementFilter) ([]model.Movement, error)
	GetMovement(ctx context.Context, id string) (*model.Movement, error)
	CreateMovement(ctx context.Context, data model.MovementCreate) (*model.Movement, error)
	CreateTransfer(ctx context.Context, data model.TransferCreate) ([]model.Movement, error)
	UpdateMovement(ctx context.Context, id string, patch model.MovementUpdate) (*model.Movement, error)
	CompleteMovement(ctx context.Context, id string, actualVolume float64) (*model.Movement, error)
	CreateAdjustment(ctx context.Context, data model.AdjustmentCreate) (*model.Movement, error)
	DeleteMovement(ctx context.Context, id string) error

	// Document import
	ConfirmImport(ctx context.Context, items []model.ImportItem) (*model.ImportResult, error)

	// Signal operations
	ListPendingSignals(ctx context.Context) ([]model.Movement, error)
	SaveSignals(ctx context.Context, signals []model.ParsedSignal) (created, skipped int, err error)
	AssignSignal(ctx context.Context, movementID string, data model.SignalAssignment) (*model.Movement, error)
	UpdateTradeInfo(ctx context.Context, movementID string, data model.TradeInfo) (*model.Movement, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Extractor defines the contract for the external document-extraction
// service. Extraction is an opaque OCR/AI step; the result carries raw
// records plus per-document errors, and a failed document never blocks the
// rest of the batch.
type Extractor interface {
	ExtractFromDocuments(ctx context.Context, paths []string) ([]model.ExtractionResult, error)
}

// TankMatcher attaches confidence-scored tank candidates to raw extracted
// records. Confidence scoring is external to the reconciliation engine.
type TankMatcher interface {
	Match(name string) (candidates []model.MatchCandidate, isExact bool)
	Attach(records []model.ExtractedMovement) []model.RecordWithMatches
}
