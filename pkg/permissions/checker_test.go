package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required string
		want     bool
	}{
		{"empty requirement", nil, "", true},
		{"exact", []string{OvertimeRead}, OvertimeRead, true},
		{"full access", []string{All}, OvertimeDecide, true},
		{"resource wildcard", []string{OvertimeAll}, OvertimeCalculate, true},
		{"wildcard does not leak to other resources", []string{"overtimex.*"}, OvertimeRead, false},
		{"missing", []string{OvertimeRead}, OvertimeDecide, false},
		{"nothing granted", nil, OvertimeRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.granted, tt.required))
		})
	}
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(OvertimeDecide))
	assert.False(t, IsKnown(OvertimeAll))
}
