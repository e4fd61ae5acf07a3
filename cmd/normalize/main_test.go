package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputStem(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain workbook", "q3_revenue.xlsx", "q3_revenue"},
		{"nested path", "/data/input/branch report.xls", "branch report"},
		{"macro workbook", "costs.xlsm", "costs"},
		{"no extension", "workbook", "workbook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputStem(tt.path))
		})
	}
}
