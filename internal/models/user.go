package models

import (
	"gorm.io/gorm"
)

// Role controls what a user may do: admins manage tasks, users work on them.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents an account in the system. Accounts are created at sign-up
// and are immutable afterwards (no profile-edit flow).
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'user'"`
	WhatsApp string `json:"whatsapp" gorm:"column:whatsapp"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
