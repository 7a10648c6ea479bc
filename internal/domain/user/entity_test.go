package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPointsFor(t *testing.T) {
	tests := []struct {
		total string
		want  int64
	}{
		{"0", 0},
		{"99.99", 0},
		{"100", 1},
		{"250.50", 2},
		{"12999", 129},
		{"-500", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PointsFor(decimal.RequireFromString(tt.total)), tt.total)
	}
}

func TestPrincipalCanAccess(t *testing.T) {
	owner := uuid.New()

	assert.True(t, Principal{ID: owner}.CanAccess(owner))
	assert.False(t, Principal{ID: uuid.New()}.CanAccess(owner))
	assert.True(t, Principal{ID: uuid.New(), IsAdmin: true}.CanAccess(owner))
	assert.Equal(t, RoleAdmin, Principal{IsAdmin: true}.Role())
	assert.Equal(t, RoleCustomer, Principal{}.Role())
}
