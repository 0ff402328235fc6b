package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/ledger"
	"equipment-tracker-backend/internal/model"
)

// RecordMaintenance appends a service log entry. Flagging the item moves its
// status to maintenance (or damaged); the ledger only moves when the entry
// names a positive quantity, and then atomically with the status change.
func (s *gormStore) RecordMaintenance(ctx context.Context, input MaintenanceInput) (*MaintenanceResult, error) {
	if strings.TrimSpace(input.PerformedBy) == "" {
		return nil, apperr.NewValidationError("performed_by", "is required")
	}
	if strings.TrimSpace(input.Notes) == "" {
		return nil, apperr.NewValidationError("notes", "is required")
	}
	if !input.Type.Valid() {
		return nil, apperr.NewValidationError("type", "unknown maintenance type %q", input.Type)
	}
	if input.Cost.IsNegative() {
		return nil, apperr.NewValidationError("cost", "must not be negative")
	}
	if input.Quantity < 0 {
		return nil, apperr.NewValidationError("quantity", "must not be negative")
	}
	if input.ConditionAfter != "" && !input.ConditionAfter.Valid() {
		return nil, apperr.NewValidationError("condition_after", "unknown condition %q", input.ConditionAfter)
	}
	if input.MarkAsUnderMaintenance && input.MarkAsDamaged {
		return nil, apperr.NewValidationError("mark_as_damaged", "cannot combine with mark_as_under_maintenance")
	}
	if input.Quantity > 0 && !input.MarkAsUnderMaintenance && !input.MarkAsDamaged {
		return nil, apperr.NewValidationError("quantity", "requires mark_as_under_maintenance or mark_as_damaged")
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = *input.Date
	}

	var result *MaintenanceResult
	err := s.runLedgerTxn(ctx, func(tx *gorm.DB) error {
		eq, err := fetchEquipment(tx, input.EquipmentID)
		if err != nil {
			return err
		}

		next := eq.Ledger
		extra := map[string]any{}
		if input.MarkAsUnderMaintenance {
			extra["status"] = model.StatusMaintenance
		}
		if input.MarkAsDamaged {
			extra["status"] = model.StatusDamaged
		}
		if input.Quantity > 0 {
			if input.Quantity > eq.Available {
				return fmt.Errorf("%w: requested %d, available %d",
					apperr.ErrInsufficientAvailability, input.Quantity, eq.Available)
			}
			delta := ledger.Delta{Available: -input.Quantity, Maintenance: input.Quantity}
			if input.MarkAsDamaged {
				delta = ledger.Delta{Available: -input.Quantity, Damaged: input.Quantity}
			}
			if err := next.Apply(delta); err != nil {
				return err
			}
		}
		if input.ConditionAfter != "" {
			extra["condition"] = input.ConditionAfter
		}
		if input.NextMaintenanceDate != nil {
			extra["next_maintenance"] = *input.NextMaintenanceDate
		}

		if err := casLedger(tx, eq, next, extra); err != nil {
			return err
		}

		record := model.MaintenanceRecord{
			EquipmentID:            eq.ID,
			Type:                   input.Type,
			Date:                   date,
			NextMaintenanceDate:    input.NextMaintenanceDate,
			PerformedBy:            strings.TrimSpace(input.PerformedBy),
			Cost:                   input.Cost,
			ConditionAfter:         input.ConditionAfter,
			Notes:                  input.Notes,
			MarkAsUnderMaintenance: input.MarkAsUnderMaintenance,
			Quantity:               input.Quantity,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create maintenance record: %w", err)
		}

		updated, err := fetchEquipment(tx, eq.ID)
		if err != nil {
			return err
		}
		result = &MaintenanceResult{Record: record, Equipment: *updated}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteMaintenance is the explicit operator action closing a maintenance
// (or damage) episode: it drains the matching bucket back into available and
// restores the status. With an empty bucket it is a status-only restore.
func (s *gormStore) CompleteMaintenance(ctx context.Context, equipmentID int64) (*CompleteResult, error) {
	var result *CompleteResult
	err := s.runLedgerTxn(ctx, func(tx *gorm.DB) error {
		eq, err := fetchEquipment(tx, equipmentID)
		if err != nil {
			return err
		}

		var restored int
		next := eq.Ledger
		switch eq.Status {
		case model.StatusMaintenance:
			restored = eq.Maintenance
			if restored > 0 {
				if err := next.Apply(ledger.Delta{Available: restored, Maintenance: -restored}); err != nil {
					return err
				}
			}
		case model.StatusDamaged:
			restored = eq.Damaged
			if restored > 0 {
				if err := next.Apply(ledger.Delta{Available: restored, Damaged: -restored}); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: status is %s", apperr.ErrNothingToComplete, eq.Status)
		}

		now := time.Now().UTC()
		extra := map[string]any{
			"status":           model.StatusAvailable,
			"last_maintenance": now,
		}
		if err := casLedger(tx, eq, next, extra); err != nil {
			return err
		}

		updated, err := fetchEquipment(tx, eq.ID)
		if err != nil {
			return err
		}
		result = &CompleteResult{
			Equipment:       *updated,
			Restored:        restored,
			BecameAvailable: eq.Available == 0 && next.Available > 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListMaintenance returns an item's maintenance history, newest first.
func (s *gormStore) ListMaintenance(ctx context.Context, equipmentID int64) ([]model.MaintenanceRecord, error) {
	if _, err := fetchEquipment(s.db.WithContext(ctx), equipmentID); err != nil {
		return nil, err
	}

	var records []model.MaintenanceRecord
	if err := s.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	return records, nil
}
