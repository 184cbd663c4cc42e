package domain

import (
	"strings"
	"time"
)

// Role enumerates account groups.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleEmployer Role = "EMPLOYER"
)

var roles = []Role{RoleEmployee, RoleEmployer}

// ParseRole maps a role name to a Role, ignoring case ("EMPLOYER",
// "employer" and "Employer" all match). ok is false for anything else.
func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// User is an account: an Employee who submits tickets or an Employer who reviews them.
// Suspended accounts are retained but excluded from active lookups.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Suspended    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsEmployer reports whether the account may review tickets and manage users.
func (u *User) IsEmployer() bool {
	return u != nil && u.Role == RoleEmployer
}
