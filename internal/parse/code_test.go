package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCode(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  ParsedCode
		expectErr bool
	}{
		{
			name:     "Standard code with sequence",
			raw:      "WLD-MIG-003",
			expected: ParsedCode{Code: "WLD-MIG-003", Prefix: "WLD-MIG", Seq: 3},
		},
		{
			name:     "Lowercase is uppercased",
			raw:      "wld-001",
			expected: ParsedCode{Code: "WLD-001", Prefix: "WLD", Seq: 1},
		},
		{
			name:     "Whitespace becomes dashes",
			raw:      "  lathe 12 ",
			expected: ParsedCode{Code: "LATHE-12", Prefix: "LATHE", Seq: 12},
		},
		{
			name:     "No sequence suffix",
			raw:      "FORKLIFT",
			expected: ParsedCode{Code: "FORKLIFT", Prefix: "FORKLIFT", Seq: 0},
		},
		{
			name:     "Alphanumeric tail is not a sequence",
			raw:      "CNC-MK2",
			expected: ParsedCode{Code: "CNC-MK2", Prefix: "CNC-MK2", Seq: 0},
		},
		{
			name:      "Empty code",
			raw:       "   ",
			expectErr: true,
		},
		{
			name:      "Illegal characters",
			raw:       "WLD_003!",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseCode(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}
