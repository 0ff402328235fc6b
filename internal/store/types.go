package store

import (
	"time"

	"github.com/shopspring/decimal"

	"equipment-tracker-backend/internal/model"
)

// CreateEquipmentInput carries the fields for registering a new equipment
// item. Quantity seeds the available bucket.
type CreateEquipmentInput struct {
	EquipmentCode string          `json:"equipment_code"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	SerialNumber  string          `json:"serial_number"`
	Location      string          `json:"location"`
	Quantity      int             `json:"quantity"`
	Value         decimal.Decimal `json:"value"`
	Condition     model.Condition `json:"condition"`
	PurchaseDate  *time.Time      `json:"purchase_date"`
	Description   string          `json:"description"`
}

// EquipmentPatch is a partial update of an equipment item. Nil fields are
// left untouched. EquipmentCode is accepted only so that an attempt to change
// it can be rejected explicitly.
type EquipmentPatch struct {
	EquipmentCode   *string          `json:"equipment_code"`
	Name            *string          `json:"name"`
	Category        *string          `json:"category"`
	Brand           *string          `json:"brand"`
	Model           *string          `json:"model"`
	SerialNumber    *string          `json:"serial_number"`
	Location        *string          `json:"location"`
	Quantity        *int             `json:"quantity"`
	Value           *decimal.Decimal `json:"value"`
	Status          *model.Status    `json:"status"`
	Condition       *model.Condition `json:"condition"`
	PurchaseDate    *time.Time       `json:"purchase_date"`
	NextMaintenance *time.Time       `json:"next_maintenance"`
	Description     *string          `json:"description"`
}

// SortKey enumerates the supported list orderings.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
	SortByQuantity SortKey = "quantity"
	SortByValue    SortKey = "value"
)

// ListQuery is the typed filter for equipment listings. Zero values mean "no
// filter"; Search matches name, code, brand and model case-insensitively.
type ListQuery struct {
	Category string
	Status   model.Status
	Location string
	Search   string
	SortBy   SortKey
	Desc     bool
}

// AssignInput carries the fields for checking out units of an item.
type AssignInput struct {
	EquipmentID int64      `json:"-"`
	UserID      int64      `json:"user_id"`
	Quantity    int        `json:"quantity"`
	Purpose     string     `json:"purpose"`
	Notes       string     `json:"notes"`
	DueDate     *time.Time `json:"due_date"`
}

// ReturnInput carries the fields for closing an assignment.
type ReturnInput struct {
	Condition model.Condition `json:"condition"`
	Notes     string          `json:"notes"`
}

// ReturnResult is the outcome of a return: the closed assignment, the updated
// item, and whether the item just came back from full checkout.
type ReturnResult struct {
	Assignment      model.Assignment
	Equipment       model.Equipment
	BecameAvailable bool
}

// AssignmentView is an assignment annotated with its overdue flag for API
// consumers.
type AssignmentView struct {
	model.Assignment
	IsOverdue bool `json:"is_overdue"`
}

// MaintenanceInput carries the fields for appending a maintenance record.
// Quantity > 0 additionally pulls that many available units into the bucket
// matching the flagged status, in the same transaction.
type MaintenanceInput struct {
	EquipmentID            int64                 `json:"-"`
	Type                   model.MaintenanceType `json:"type"`
	Date                   *time.Time            `json:"date"`
	NextMaintenanceDate    *time.Time            `json:"next_maintenance_date"`
	PerformedBy            string                `json:"performed_by"`
	Cost                   decimal.Decimal       `json:"cost"`
	ConditionAfter         model.Condition       `json:"condition_after"`
	Notes                  string                `json:"notes"`
	MarkAsUnderMaintenance bool                  `json:"mark_as_under_maintenance"`
	MarkAsDamaged          bool                  `json:"mark_as_damaged"`
	Quantity               int                   `json:"quantity"`
}

// MaintenanceResult is the outcome of recording maintenance.
type MaintenanceResult struct {
	Record    model.MaintenanceRecord
	Equipment model.Equipment
}

// CompleteResult is the outcome of completing maintenance: the updated item
// and whether the completion made units available again.
type CompleteResult struct {
	Equipment       model.Equipment
	Restored        int
	BecameAvailable bool
}
