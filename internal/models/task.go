package models

import (
	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusWorking TaskStatus = "working"
	StatusDone    TaskStatus = "done"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusWorking, StatusDone:
		return true
	}
	return false
}

// Task represents a unit of work assigned by an admin to a user.
// AssignedTo and CreatedBy are denormalized email references, not id edges.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo" gorm:"column:assigned_to;index;not null"`
	CreatedBy   string     `json:"createdBy" gorm:"column:created_by"`
	Status      TaskStatus `json:"status" gorm:"not null;default:'pending'"`
	Deadline    Deadline   `json:"deadline" gorm:"index"`
	DriveLink   string     `json:"driveLink" gorm:"column:drive_link"`
	gorm.Model
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
