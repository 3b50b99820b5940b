package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginatedResponseTotalPages(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		total      int
		totalPages int
	}{
		{"exact multiple", 20, 40, 2},
		{"partial last page", 20, 45, 3},
		{"fewer than one page", 20, 7, 1},
		{"empty result", 20, 0, 0},
		{"zero limit", 0, 45, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := PaginatedResponse(nil, 1, tt.limit, tt.total)
			assert.True(t, res.Success)
			assert.Equal(t, tt.totalPages, res.TotalPages)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	res := ErrorResponse("boom")
	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.Error)
	assert.Zero(t, res.TotalPages)
}
