package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/ledger"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/parse"
)

// CreateEquipment registers a new item. The code is normalized and must be
// unique; the ledger starts with every unit available.
func (s *gormStore) CreateEquipment(ctx context.Context, input CreateEquipmentInput) (*model.Equipment, error) {
	code, err := parse.NormalizeCode(input.EquipmentCode)
	if err != nil {
		return nil, apperr.NewValidationError("equipment_code", "%v", err)
	}
	for field, value := range map[string]string{
		"name":     input.Name,
		"category": input.Category,
		"brand":    input.Brand,
		"model":    input.Model,
		"location": input.Location,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, apperr.NewValidationError(field, "is required")
		}
	}
	if input.Quantity < 1 {
		return nil, apperr.NewValidationError("quantity", "must be at least 1")
	}
	if input.Value.IsNegative() {
		return nil, apperr.NewValidationError("value", "must not be negative")
	}
	condition := input.Condition
	if condition == "" {
		condition = model.ConditionGood
	}
	if !condition.Valid() {
		return nil, apperr.NewValidationError("condition", "unknown condition %q", condition)
	}

	eq := model.Equipment{
		EquipmentCode: code,
		Name:          strings.TrimSpace(input.Name),
		Category:      strings.TrimSpace(input.Category),
		Brand:         strings.TrimSpace(input.Brand),
		Model:         strings.TrimSpace(input.Model),
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		Location:      strings.TrimSpace(input.Location),
		Ledger:        ledger.New(input.Quantity),
		Status:        model.StatusAvailable,
		Condition:     condition,
		Value:         input.Value,
		PurchaseDate:  input.PurchaseDate,
		Description:   input.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Equipment{}).Where("equipment_code = ?", code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", apperr.ErrDuplicateCode, code)
		}
		if err := tx.Create(&eq).Error; err != nil {
			return fmt.Errorf("failed to create equipment %s: %w", code, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

// GetEquipment returns one item by id.
func (s *gormStore) GetEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	return fetchEquipment(s.db.WithContext(ctx), id)
}

// UpdateEquipment applies a partial update. The equipment code is immutable;
// status changes are validated against the ledger, and quantity edits are
// only allowed while every unit is available.
func (s *gormStore) UpdateEquipment(ctx context.Context, id int64, patch EquipmentPatch) (*model.Equipment, error) {
	var updated *model.Equipment
	err := s.runLedgerTxn(ctx, func(tx *gorm.DB) error {
		eq, err := fetchEquipment(tx, id)
		if err != nil {
			return err
		}

		if patch.EquipmentCode != nil {
			code, err := parse.NormalizeCode(*patch.EquipmentCode)
			if err != nil || code != eq.EquipmentCode {
				return fmt.Errorf("%w: %s", apperr.ErrImmutableField, eq.EquipmentCode)
			}
		}

		next := eq.Ledger
		if patch.Quantity != nil && *patch.Quantity != eq.Quantity {
			if err := next.SetTotal(*patch.Quantity); err != nil {
				return err
			}
		}

		extra := map[string]any{}
		setString := func(column string, v *string, required bool) error {
			if v == nil {
				return nil
			}
			trimmed := strings.TrimSpace(*v)
			if required && trimmed == "" {
				return apperr.NewValidationError(column, "is required")
			}
			extra[column] = trimmed
			return nil
		}
		for _, f := range []struct {
			column   string
			value    *string
			required bool
		}{
			{"name", patch.Name, true},
			{"category", patch.Category, true},
			{"brand", patch.Brand, true},
			{"model", patch.Model, true},
			{"location", patch.Location, true},
			{"serial_number", patch.SerialNumber, false},
			{"description", patch.Description, false},
		} {
			if err := setString(f.column, f.value, f.required); err != nil {
				return err
			}
		}

		if patch.Value != nil {
			if patch.Value.IsNegative() {
				return apperr.NewValidationError("value", "must not be negative")
			}
			extra["value"] = *patch.Value
		}
		if patch.Condition != nil {
			if !patch.Condition.Valid() {
				return apperr.NewValidationError("condition", "unknown condition %q", *patch.Condition)
			}
			extra["condition"] = *patch.Condition
		}
		if patch.PurchaseDate != nil {
			extra["purchase_date"] = *patch.PurchaseDate
		}
		if patch.NextMaintenance != nil {
			extra["next_maintenance"] = *patch.NextMaintenance
		}
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return apperr.NewValidationError("status", "unknown status %q", *patch.Status)
			}
			if err := validateStatusChange(*patch.Status, next); err != nil {
				return err
			}
			extra["status"] = *patch.Status
		}

		if err := casLedger(tx, eq, next, extra); err != nil {
			return err
		}

		updated, err = fetchEquipment(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// validateStatusChange rejects operator status edits that contradict the
// ledger.
func validateStatusChange(status model.Status, l ledger.Ledger) error {
	switch status {
	case model.StatusAvailable:
		if l.InUse > 0 {
			return apperr.NewValidationError("status", "cannot be available while %d units are in use", l.InUse)
		}
	case model.StatusRetired:
		if l.Available != l.Quantity {
			return apperr.NewValidationError("status", "cannot retire while units are checked out or in repair")
		}
	}
	return nil
}

// DeleteEquipment removes an item and its history. Items with active
// assignments are never deleted; the caller is responsible for having
// re-authenticated the operator first.
func (s *gormStore) DeleteEquipment(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := fetchEquipment(tx, id); err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&model.Assignment{}).
			Where("equipment_id = ? AND returned_at IS NULL", id).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count active assignments: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: %d active", apperr.ErrActiveAssignments, active)
		}

		if err := tx.Where("equipment_id = ?", id).Delete(&model.Assignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&model.MaintenanceRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance records: %w", err)
		}
		if err := tx.Exec("DELETE FROM subscription_equipment_mapping WHERE equipment_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to clear subscriptions: %w", err)
		}
		if err := tx.Delete(&model.Equipment{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete equipment %d: %w", id, err)
		}
		return nil
	})
}

// ListEquipment returns items matching the typed query, ascending by the
// sort key unless Desc is set.
func (s *gormStore) ListEquipment(ctx context.Context, q ListQuery) ([]model.Equipment, error) {
	tx := s.db.WithContext(ctx).Model(&model.Equipment{})

	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Location != "" {
		tx = tx.Where("location = ?", q.Location)
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(strings.TrimSpace(q.Search)) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? OR LOWER(equipment_code) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?",
			needle, needle, needle, needle,
		)
	}

	column := "name"
	switch q.SortBy {
	case SortByCategory:
		column = "category"
	case SortByQuantity:
		column = "quantity"
	case SortByValue:
		column = "value"
	case SortByName, "":
	default:
		return nil, apperr.NewValidationError("sort_by", "unknown sort key %q", q.SortBy)
	}
	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}

	var items []model.Equipment
	if err := tx.Order(fmt.Sprintf("%s %s", column, direction)).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}
