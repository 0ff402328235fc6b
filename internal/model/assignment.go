package model

import "time"

// Assignment is a checkout of N units of an equipment item to a user. It is
// active while ReturnedAt is null and terminal once returned; there are no
// partial returns.
type Assignment struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	EquipmentID int64  `gorm:"index;not null" json:"equipment_id"`
	UserID      int64  `gorm:"index;not null" json:"user_id"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	Purpose     string `gorm:"size:512" json:"purpose"`
	Notes       string `gorm:"type:text" json:"notes"`

	AssignedAt time.Time  `gorm:"not null" json:"assigned_at"`
	DueDate    *time.Time `json:"due_date"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at,omitempty"`

	ReturnCondition Condition `gorm:"size:32" json:"return_condition,omitempty"`
	ReturnNotes     string    `gorm:"type:text" json:"return_notes,omitempty"`

	// OverdueNotifiedAt records the last overdue push for this assignment so
	// the sweeper does not spam subscribers every interval.
	OverdueNotifiedAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Equipment Equipment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Overdue reports whether the assignment is active and past its due date.
func (a Assignment) Overdue(now time.Time) bool {
	return a.ReturnedAt == nil && a.DueDate != nil && a.DueDate.Before(now)
}
