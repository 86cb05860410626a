package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/camin-energy/tankflow/internal/model"
)

// MockStore is a test implementation of the MovementStore interface. It
// records every call and can be configured to fail specific movement ids.
type MockStore struct {
	failIDs         map[string]error
	transferErr     error
	confirmErr      error
	CompleteCalls   []CompleteCall
	UpdateCalls     []UpdateCall
	TransferCalls   []model.TransferCreate
	ConfirmedItems  [][]model.ImportItem
	mu              sync.Mutex
	nextID          int
	FailedPerImport int
}

// CompleteCall records one CompleteMovement invocation.
type CompleteCall struct {
	MovementID   string
	ActualVolume float64
}

// UpdateCall records one UpdateMovement invocation.
type UpdateCall struct {
	MovementID string
	Patch      model.MovementUpdate
}

// NewMockStore creates a new mock movement store.
func NewMockStore() *MockStore {
	return &MockStore{failIDs: make(map[string]error)}
}

// FailMovement makes calls touching the given movement id return err.
func (m *MockStore) FailMovement(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIDs[id] = err
}

// FailTransfers makes CreateTransfer return err.
func (m *MockStore) FailTransfers(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transferErr = err
}

// FailConfirm makes ConfirmImport return err.
func (m *MockStore) FailConfirm(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmErr = err
}

// CreateTransfer records the request and fabricates one movement per target.
func (m *MockStore) CreateTransfer(_ context.Context, data model.TransferCreate) ([]model.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transferErr != nil {
		return nil, m.transferErr
	}
	m.TransferCalls = append(m.TransferCalls, data)

	created := make([]model.Movement, 0, len(data.Targets))
	for _, target := range data.Targets {
		m.nextID++
		created = append(created, model.Movement{
			ID:             fmt.Sprintf("mov-%d", m.nextID),
			Type:           model.TypeTransfer,
			TankID:         data.SourceTankID,
			TargetTankID:   target.TankID,
			ExpectedVolume: target.Volume,
			ScheduledDate:  data.ScheduledDate,
			Notes:          data.Notes,
			Source:         model.SourceManual,
		})
	}
	return created, nil
}

// UpdateMovement records the patch, honoring configured failures.
func (m *MockStore) UpdateMovement(_ context.Context, id string, patch model.MovementUpdate) (*model.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failIDs[id]; ok {
		return nil, err
	}
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{MovementID: id, Patch: patch})

	mov := model.Movement{ID: id}
	if patch.ScheduledDate != nil {
		mov.ScheduledDate = *patch.ScheduledDate
	}
	return &mov, nil
}

// CompleteMovement records the completion, honoring configured failures.
func (m *MockStore) CompleteMovement(_ context.Context, id string, actualVolume float64) (*model.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failIDs[id]; ok {
		return nil, err
	}
	m.CompleteCalls = append(m.CompleteCalls, CompleteCall{MovementID: id, ActualVolume: actualVolume})

	return &model.Movement{ID: id, ActualVolume: &actualVolume}, nil
}

// ConfirmImport records the items and reports them all created, minus any
// configured per-import failure count.
func (m *MockStore) ConfirmImport(_ context.Context, items []model.ImportItem) (*model.ImportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	m.ConfirmedItems = append(m.ConfirmedItems, items)

	failed := m.FailedPerImport
	if failed > len(items) {
		failed = len(items)
	}
	result := &model.ImportResult{
		CreatedCount: len(items) - failed,
		FailedCount:  failed,
	}
	for i := 0; i < failed; i++ {
		result.Errors = append(result.Errors, fmt.Sprintf("item %d: create failed", len(items)-failed+i))
	}
	return result, nil
}
