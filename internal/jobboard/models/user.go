package models

import (
	"time"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleCompany Role = "company"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCompany || r == RoleStudent
}

// User is an account known to the identity service.
type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Role      Role   `gorm:"size:16;not null"`
	CreatedAt time.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uint
	Role   Role
}

// Is reports whether the identity holds the given role.
func (i Identity) Is(role Role) bool {
	return i.UserID != 0 && i.Role == role
}
