package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/ledger"
	"equipment-tracker-backend/internal/model"
)

// Assign checks out units of an item to a user. The availability check and
// the ledger movement happen atomically; two staff racing for the last unit
// cannot both win.
func (s *gormStore) Assign(ctx context.Context, input AssignInput) (*model.Assignment, error) {
	if input.Quantity < 1 {
		return nil, apperr.NewValidationError("quantity", "must be at least 1")
	}
	if input.UserID == 0 {
		return nil, apperr.NewValidationError("user_id", "is required")
	}

	var created *model.Assignment
	err := s.runLedgerTxn(ctx, func(tx *gorm.DB) error {
		eq, err := fetchEquipment(tx, input.EquipmentID)
		if err != nil {
			return err
		}

		switch eq.Status {
		case model.StatusMaintenance, model.StatusDamaged, model.StatusRetired:
			return fmt.Errorf("%w: status is %s", apperr.ErrInvalidTarget, eq.Status)
		}
		if input.Quantity > eq.Available {
			return fmt.Errorf("%w: requested %d, available %d",
				apperr.ErrInsufficientAvailability, input.Quantity, eq.Available)
		}

		next := eq.Ledger
		if err := next.Apply(ledger.Delta{Available: -input.Quantity, InUse: input.Quantity}); err != nil {
			return err
		}
		if err := casLedger(tx, eq, next, nil); err != nil {
			return err
		}

		assignment := model.Assignment{
			EquipmentID: eq.ID,
			UserID:      input.UserID,
			Quantity:    input.Quantity,
			Purpose:     input.Purpose,
			Notes:       input.Notes,
			AssignedAt:  time.Now().UTC(),
			DueDate:     input.DueDate,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		created = &assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReturnAssignment closes an active assignment and moves its units back to
// available. The item's condition is downgraded to the worse of its current
// grade and the returned grade.
func (s *gormStore) ReturnAssignment(ctx context.Context, assignmentID int64, input ReturnInput) (*ReturnResult, error) {
	if input.Condition != "" && !input.Condition.Valid() {
		return nil, apperr.NewValidationError("condition", "unknown condition %q", input.Condition)
	}

	var result *ReturnResult
	err := s.runLedgerTxn(ctx, func(tx *gorm.DB) error {
		var assignment model.Assignment
		if err := tx.First(&assignment, assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
		}
		if assignment.ReturnedAt != nil {
			return fmt.Errorf("%w: returned at %s", apperr.ErrAlreadyReturned, assignment.ReturnedAt.Format(time.RFC3339))
		}

		eq, err := fetchEquipment(tx, assignment.EquipmentID)
		if err != nil {
			return err
		}

		next := eq.Ledger
		if err := next.Apply(ledger.Delta{Available: assignment.Quantity, InUse: -assignment.Quantity}); err != nil {
			return err
		}

		extra := map[string]any{}
		if input.Condition != "" {
			extra["condition"] = model.WorseCondition(eq.Condition, input.Condition)
		}
		if err := casLedger(tx, eq, next, extra); err != nil {
			return err
		}

		now := time.Now().UTC()
		assignment.ReturnedAt = &now
		assignment.ReturnCondition = input.Condition
		assignment.ReturnNotes = input.Notes
		if err := tx.Save(&assignment).Error; err != nil {
			return fmt.Errorf("failed to close assignment %d: %w", assignmentID, err)
		}

		updated, err := fetchEquipment(tx, eq.ID)
		if err != nil {
			return err
		}
		result = &ReturnResult{
			Assignment:      assignment,
			Equipment:       *updated,
			BecameAvailable: eq.Available == 0 && next.Available > 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListAssignments returns an item's assignments, newest first, annotated
// with the overdue flag. activeOnly restricts to open checkouts.
func (s *gormStore) ListAssignments(ctx context.Context, equipmentID int64, activeOnly bool) ([]AssignmentView, error) {
	if _, err := fetchEquipment(s.db.WithContext(ctx), equipmentID); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Where("equipment_id = ?", equipmentID)
	if activeOnly {
		tx = tx.Where("returned_at IS NULL")
	}

	var assignments []model.Assignment
	if err := tx.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	now := time.Now().UTC()
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, AssignmentView{Assignment: a, IsOverdue: a.Overdue(now)})
	}
	return views, nil
}
