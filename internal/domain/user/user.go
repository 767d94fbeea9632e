package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user: not found")
)

// Role is the back-office role carried by admin accounts and session tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// ValidRole reports whether v names one of the two back-office roles.
func ValidRole(v string) bool {
	return Role(v) == RoleAdmin || Role(v) == RoleStaff
}

type User struct {
	ID           string
	Name         string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// CanAccessAdmin reports whether the account may enter the back office.
func (u *User) CanAccessAdmin() bool {
	return ValidRole(string(u.Role))
}
