// Package status projects an equipment item's raw status and condition enums
// into the display tuple API consumers render. Pure derivation, no side
// effects: unknown values fall back to sensible defaults instead of failing.
package status

import "equipment-tracker-backend/internal/model"

// Projection is the display tuple for one equipment item.
type Projection struct {
	StatusLabel    string `json:"status_label"`
	StatusIcon     string `json:"status_icon"`
	ConditionLabel string `json:"condition_label"`
}

var statusDisplay = map[model.Status]struct{ label, icon string }{
	model.StatusAvailable:   {"Available", "circle-check"},
	model.StatusInUse:       {"In Use", "user-clock"},
	model.StatusMaintenance: {"Under Maintenance", "wrench"},
	model.StatusDamaged:     {"Damaged", "triangle-alert"},
	model.StatusRetired:     {"Retired", "archive"},
}

var conditionDisplay = map[model.Condition]string{
	model.ConditionExcellent: "Excellent",
	model.ConditionGood:      "Good",
	model.ConditionFair:      "Fair",
	model.ConditionPoor:      "Poor",
}

// Project derives the display tuple for an item.
func Project(item model.Equipment) Projection {
	sd, ok := statusDisplay[item.Status]
	if !ok {
		sd = statusDisplay[model.StatusAvailable]
	}
	cd, ok := conditionDisplay[item.Condition]
	if !ok {
		cd = conditionDisplay[model.ConditionGood]
	}
	return Projection{StatusLabel: sd.label, StatusIcon: sd.icon, ConditionLabel: cd}
}
