package models

import (
	"time"
)

// Image is an attachment embedded in a comment. Exactly one of Data
// (an inline data: URL) or URL (an externally stored blob) is set;
// renderers must accept either.
type Image struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Comment is a threaded message under a task. Comments are never edited
// or deleted; CreatedAt is server-assigned and is the authoritative
// ordering key.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"taskId" gorm:"column:task_id;index;not null"`
	Text      string    `json:"text"`
	Images    []Image   `json:"images" gorm:"serializer:json"`
	Author    string    `json:"author" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}
