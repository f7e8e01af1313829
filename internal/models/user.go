package models

import (
	"time"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// ParseRole accepts only the known role names.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleAuthor, RoleAdmin:
		return r, true
	}
	return "", false
}

// User is the minimal author record; accounts are managed elsewhere.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Avatar    string    `gorm:"default:default-avatar.jpg" json:"avatar"`
	Role      Role      `gorm:"size:20;default:'user';not null" json:"role"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
