package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceType classifies a maintenance record.
type MaintenanceType string

const (
	MaintenanceRoutine     MaintenanceType = "routine"
	MaintenanceRepair      MaintenanceType = "repair"
	MaintenanceInspection  MaintenanceType = "inspection"
	MaintenanceCalibration MaintenanceType = "calibration"
	MaintenanceCleaning    MaintenanceType = "cleaning"
	MaintenanceUpgrade     MaintenanceType = "upgrade"
)

// Valid reports whether t is a known maintenance type.
func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenanceRoutine, MaintenanceRepair, MaintenanceInspection,
		MaintenanceCalibration, MaintenanceCleaning, MaintenanceUpgrade:
		return true
	}
	return false
}

// MaintenanceRecord is one append-only service log entry for an equipment
// item. Quantity is the number of units pulled out of circulation by this
// entry; zero means the entry is informational and moves nothing.
type MaintenanceRecord struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	EquipmentID int64           `gorm:"index;not null" json:"equipment_id"`
	Type        MaintenanceType `gorm:"size:32;not null" json:"type"`
	Date        time.Time       `gorm:"not null" json:"date"`

	NextMaintenanceDate *time.Time      `json:"next_maintenance_date,omitempty"`
	PerformedBy         string          `gorm:"size:256;not null" json:"performed_by"`
	Cost                decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	ConditionAfter      Condition       `gorm:"size:32" json:"condition_after,omitempty"`
	Notes               string          `gorm:"type:text;not null" json:"notes"`

	MarkAsUnderMaintenance bool `gorm:"not null" json:"mark_as_under_maintenance"`
	Quantity               int  `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Equipment Equipment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
