package livequery

import (
	"errors"
	"time"

	"project-collab-api/internal/cache"
	"project-collab-api/internal/models"

	"gorm.io/gorm"
)

// FallbackTaskTitle labels notifications whose task no longer exists.
// A dangling taskId is expected after task deletion and must render,
// not fail.
const FallbackTaskTitle = "Unknown task"

// NotificationView is a notification plus the display label of its task.
type NotificationView struct {
	models.Notification
	TaskTitle string `json:"taskTitle,omitempty"`
}

var titleCache = cache.New[string, string]()

const titleTTL = 30 * time.Second

// EnrichNotifications resolves each notification's weak task reference
// into a display title, falling back when the task is gone. Lookups go
// through a short-lived cache so a burst of notifications for the same
// task costs one query.
func EnrichNotifications(db *gorm.DB, notifs []models.Notification) []NotificationView {
	views := make([]NotificationView, 0, len(notifs))
	for _, n := range notifs {
		v := NotificationView{Notification: n}
		if n.TaskID != "" {
			v.TaskTitle = taskTitle(db, n.TaskID)
		}
		views = append(views, v)
	}
	return views
}

func taskTitle(db *gorm.DB, taskID string) string {
	if title, ok := titleCache.Get(taskID); ok {
		return title
	}

	var task models.Task
	err := db.Select("title").Where("id = ?", taskID).First(&task).Error
	title := task.Title
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// transient store failure: fall back without caching
			return FallbackTaskTitle
		}
		title = FallbackTaskTitle
	}

	titleCache.Set(taskID, title, titleTTL)
	return title
}

// InvalidateTitle drops a task's cached title after an edit or delete.
func InvalidateTitle(taskID string) {
	titleCache.Delete(taskID)
}
