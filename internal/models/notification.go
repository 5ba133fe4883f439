package models

import (
	"time"
)

// NotificationType distinguishes what triggered a notification.
type NotificationType string

const (
	NotificationTask    NotificationType = "task"
	NotificationComment NotificationType = "comment"
	NotificationGeneral NotificationType = "general"
)

// Notification is addressed to a user by email. TaskID is a weak
// reference: the task may have been deleted since, so readers must
// tolerate it not resolving and render a fallback label instead.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserEmail string           `json:"userEmail" gorm:"column:user_email;index;not null"`
	Message   string           `json:"message" gorm:"not null"`
	Timestamp time.Time        `json:"timestamp" gorm:"index"`
	Read      bool             `json:"read" gorm:"default:false"`
	Type      NotificationType `json:"type" gorm:"default:'general'"`
	TaskID    string           `json:"taskId,omitempty" gorm:"column:task_id;index"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
