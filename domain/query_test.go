package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Pagination
	}{
		{name: "defaults", want: Pagination{Skip: 0, Limit: 30}},
		{name: "third page", page: 3, limit: 10, want: Pagination{Skip: 20, Limit: 10}},
		{name: "negative page", page: -2, limit: 5, want: Pagination{Skip: 0, Limit: 5}},
		{name: "zero limit", page: 2, want: Pagination{Skip: 30, Limit: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit))
		})
	}
}
