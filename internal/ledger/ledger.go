// Package ledger implements the four-bucket quantity accounting for one
// equipment item. Every unit the institute owns is in exactly one bucket at
// any time: available, in use, under maintenance, or damaged.
package ledger

import (
	"fmt"

	"equipment-tracker-backend/internal/apperr"
)

// Ledger tracks where each unit of an equipment item currently is.
// Invariant: Available + InUse + Maintenance + Damaged == Quantity, all >= 0.
type Ledger struct {
	Quantity    int `gorm:"not null" json:"quantity"`
	Available   int `gorm:"not null" json:"available"`
	InUse       int `gorm:"column:in_use;not null" json:"in_use"`
	Maintenance int `gorm:"not null" json:"maintenance"`
	Damaged     int `gorm:"not null" json:"damaged"`
}

// New seeds a ledger for a freshly registered item: every unit starts out
// available.
func New(quantity int) Ledger {
	return Ledger{Quantity: quantity, Available: quantity}
}

// Delta describes a movement of units between buckets. A valid delta sums to
// zero; Apply rejects anything else.
type Delta struct {
	Available   int
	InUse       int
	Maintenance int
	Damaged     int
}

// Apply moves units between buckets. It fails without modifying the ledger if
// the delta does not sum to zero or any bucket would go negative.
func (l *Ledger) Apply(d Delta) error {
	if d.Available+d.InUse+d.Maintenance+d.Damaged != 0 {
		return fmt.Errorf("%w: delta does not preserve total quantity", apperr.ErrInvariantViolation)
	}
	next := Ledger{
		Quantity:    l.Quantity,
		Available:   l.Available + d.Available,
		InUse:       l.InUse + d.InUse,
		Maintenance: l.Maintenance + d.Maintenance,
		Damaged:     l.Damaged + d.Damaged,
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*l = next
	return nil
}

// SetTotal changes the total quantity owned. It is only permitted while every
// unit is at home (available == quantity); redistributing a shrink across
// checked-out or in-repair units has no defensible rule, so we refuse it.
func (l *Ledger) SetTotal(quantity int) error {
	if quantity < 1 {
		return apperr.NewValidationError("quantity", "must be at least 1")
	}
	if l.Available != l.Quantity {
		return fmt.Errorf("%w: quantity can only be changed while all units are available", apperr.ErrInvariantViolation)
	}
	l.Quantity = quantity
	l.Available = quantity
	return nil
}

// Validate checks the sum invariant. A failure indicates corrupted data, not
// bad input.
func (l Ledger) Validate() error {
	if l.Available < 0 || l.InUse < 0 || l.Maintenance < 0 || l.Damaged < 0 {
		return fmt.Errorf("%w: negative bucket (available=%d in_use=%d maintenance=%d damaged=%d)",
			apperr.ErrInvariantViolation, l.Available, l.InUse, l.Maintenance, l.Damaged)
	}
	if sum := l.Available + l.InUse + l.Maintenance + l.Damaged; sum != l.Quantity {
		return fmt.Errorf("%w: buckets sum to %d, quantity is %d", apperr.ErrInvariantViolation, sum, l.Quantity)
	}
	return nil
}
