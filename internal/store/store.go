package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/ledger"
	"equipment-tracker-backend/internal/model"
)

// Store defines the interface for all equipment database operations.
type Store interface {
	DB() *gorm.DB

	CreateEquipment(ctx context.Context, input CreateEquipmentInput) (*model.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (*model.Equipment, error)
	UpdateEquipment(ctx context.Context, id int64, patch EquipmentPatch) (*model.Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) error
	ListEquipment(ctx context.Context, q ListQuery) ([]model.Equipment, error)

	Assign(ctx context.Context, input AssignInput) (*model.Assignment, error)
	ReturnAssignment(ctx context.Context, assignmentID int64, input ReturnInput) (*ReturnResult, error)
	ListAssignments(ctx context.Context, equipmentID int64, activeOnly bool) ([]AssignmentView, error)

	RecordMaintenance(ctx context.Context, input MaintenanceInput) (*MaintenanceResult, error)
	CompleteMaintenance(ctx context.Context, equipmentID int64) (*CompleteResult, error)
	ListMaintenance(ctx context.Context, equipmentID int64) ([]model.MaintenanceRecord, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for collaborators that manage their
// own tables (subscriptions, notification worker).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// errLedgerConflict signals that a compare-and-swap on the ledger row lost a
// race and the whole transaction should be retried on a fresh snapshot.
var errLedgerConflict = errors.New("concurrent ledger update")

const ledgerRetries = 3

// runLedgerTxn executes fn inside a transaction, retrying when the ledger
// compare-and-swap loses against a concurrent writer. Each attempt sees a
// fresh read of the equipment row, so the availability checks are re-run
// before any units move (lost-update prevention, one writer wins).
func (s *gormStore) runLedgerTxn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < ledgerRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, errLedgerConflict) {
			return err
		}
	}
	return fmt.Errorf("ledger update contention after %d attempts: %w", ledgerRetries, err)
}

// casLedger writes the new bucket values (plus any extra columns) guarded by
// the previously read ones. A zero rows-affected result means another
// transaction moved units in between; the caller must retry.
func casLedger(tx *gorm.DB, seen *model.Equipment, next ledger.Ledger, extra map[string]any) error {
	updates := map[string]any{
		"quantity":    next.Quantity,
		"available":   next.Available,
		"in_use":      next.InUse,
		"maintenance": next.Maintenance,
		"damaged":     next.Damaged,
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&model.Equipment{}).
		Where("id = ? AND quantity = ? AND available = ? AND in_use = ? AND maintenance = ? AND damaged = ?",
			seen.ID, seen.Quantity, seen.Available, seen.InUse, seen.Maintenance, seen.Damaged).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update ledger for equipment %d: %w", seen.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return errLedgerConflict
	}
	return nil
}

// fetchEquipment loads one equipment row and validates its ledger. A sum
// mismatch on load is corrupted data and surfaces as an invariant violation.
func fetchEquipment(tx *gorm.DB, id int64) (*model.Equipment, error) {
	var eq model.Equipment
	if err := tx.First(&eq, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load equipment %d: %w", id, err)
	}
	if err := eq.Ledger.Validate(); err != nil {
		return nil, fmt.Errorf("equipment %d (%s): %w", eq.ID, eq.EquipmentCode, err)
	}
	return &eq, nil
}
