package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicketStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TicketStatus
		ok   bool
	}{
		{"PENDING", TicketStatusPending, true},
		{"APPROVED", TicketStatusApproved, true},
		{"rejected", TicketStatusRejected, true},
		{"paid", TicketStatusPaid, true},
		{"Approved", "", false},
		{"", "", false},
		{"CLOSED", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTicketStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("EMPLOYER")
	assert.True(t, ok)
	assert.Equal(t, RoleEmployer, r)

	r, ok = ParseRole("employee")
	assert.True(t, ok)
	assert.Equal(t, RoleEmployee, r)

	r, ok = ParseRole("Employee")
	assert.True(t, ok)
	assert.Equal(t, RoleEmployee, r)

	_, ok = ParseRole("admin")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestUserIsEmployer(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsEmployer())
	assert.False(t, (&User{Role: RoleEmployee}).IsEmployer())
	assert.True(t, (&User{Role: RoleEmployer}).IsEmployer())
}
