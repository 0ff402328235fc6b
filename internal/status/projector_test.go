package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equipment-tracker-backend/internal/model"
)

func TestProject(t *testing.T) {
	testCases := []struct {
		name      string
		status    model.Status
		condition model.Condition
		expected  Projection
	}{
		{
			name:      "Available and good",
			status:    model.StatusAvailable,
			condition: model.ConditionGood,
			expected:  Projection{StatusLabel: "Available", StatusIcon: "circle-check", ConditionLabel: "Good"},
		},
		{
			name:      "Under maintenance",
			status:    model.StatusMaintenance,
			condition: model.ConditionFair,
			expected:  Projection{StatusLabel: "Under Maintenance", StatusIcon: "wrench", ConditionLabel: "Fair"},
		},
		{
			name:      "Retired and poor",
			status:    model.StatusRetired,
			condition: model.ConditionPoor,
			expected:  Projection{StatusLabel: "Retired", StatusIcon: "archive", ConditionLabel: "Poor"},
		},
		{
			name:      "Unknown enums fall back to defaults",
			status:    model.Status("???"),
			condition: model.Condition(""),
			expected:  Projection{StatusLabel: "Available", StatusIcon: "circle-check", ConditionLabel: "Good"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(model.Equipment{Status: tc.status, Condition: tc.condition})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestWorseCondition(t *testing.T) {
	assert.Equal(t, model.ConditionPoor, model.WorseCondition(model.ConditionGood, model.ConditionPoor))
	assert.Equal(t, model.ConditionFair, model.WorseCondition(model.ConditionFair, model.ConditionExcellent))
	assert.Equal(t, model.ConditionGood, model.WorseCondition(model.ConditionGood, model.Condition("unknown")))
}
