package model

import (
	"time"

	"github.com/shopspring/decimal"

	"equipment-tracker-backend/internal/ledger"
)

// Status is the coarse usability label of an equipment item. It is
// informational: the ledger buckets are the source of truth for where units
// are, and move only on explicit quantity-bearing actions.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "inUse"
	StatusMaintenance Status = "maintenance"
	StatusDamaged     Status = "damaged"
	StatusRetired     Status = "retired"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusDamaged, StatusRetired:
		return true
	}
	return false
}

// Condition grades the physical state of an item.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Valid reports whether c is a known condition value.
func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

var conditionRank = map[Condition]int{
	ConditionExcellent: 0,
	ConditionGood:      1,
	ConditionFair:      2,
	ConditionPoor:      3,
}

// WorseCondition returns the worse of the two grades. Unknown values rank as
// excellent so they never downgrade anything.
func WorseCondition(a, b Condition) Condition {
	if conditionRank[b] > conditionRank[a] {
		return b
	}
	return a
}

// Equipment is one registered equipment item of the institute, together with
// its quantity ledger.
type Equipment struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	EquipmentCode string `gorm:"uniqueIndex;size:64;not null" json:"equipment_code"`
	Name          string `gorm:"size:256;not null" json:"name"`
	Category      string `gorm:"index;size:128;not null" json:"category"`
	Brand         string `gorm:"size:128;not null" json:"brand"`
	Model         string `gorm:"size:128;not null" json:"model"`
	SerialNumber  string `gorm:"size:128" json:"serial_number"`
	Location      string `gorm:"index;size:256;not null" json:"location"`

	ledger.Ledger `gorm:"embedded"`

	Status          Status          `gorm:"size:32;not null" json:"status"`
	Condition       Condition       `gorm:"size:32;not null" json:"condition"`
	Value           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	PurchaseDate    *time.Time      `json:"purchase_date"`
	LastMaintenance *time.Time      `json:"last_maintenance"`
	NextMaintenance *time.Time      `json:"next_maintenance"`
	Description     string          `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Assignments        []Assignment        `gorm:"foreignKey:EquipmentID" json:"-"`
	MaintenanceRecords []MaintenanceRecord `gorm:"foreignKey:EquipmentID" json:"-"`
}
