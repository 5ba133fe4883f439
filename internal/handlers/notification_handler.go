package handlers

import (
	"errors"
	"net/http"

	"project-collab-api/internal/bus"
	"project-collab-api/internal/database"
	"project-collab-api/internal/livequery"
	"project-collab-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

/*
*
GetNotifications handles GET /api/notifications
Returns the caller's notifications, newest first, each enriched with its
task's title or a fallback label when the task no longer exists.
*/
func GetNotifications(c *gin.Context) {
	email := c.GetString("email")

	var notifs []models.Notification
	err := database.GetDB().
		Where("user_email = ?", email).
		Order("timestamp desc").
		Find(&notifs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	views := livequery.EnrichNotifications(database.GetDB(), notifs)
	c.JSON(http.StatusOK, gin.H{
		"notifications": views,
		"count":         len(views),
	})
}

// ownedNotification loads a notification and verifies the caller owns it.
func ownedNotification(c *gin.Context) (*models.Notification, bool) {
	email := c.GetString("email")
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification ID is required"})
		return nil, false
	}

	var notif models.Notification
	if err := database.GetDB().Where("id = ?", id).First(&notif).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		}
		return nil, false
	}
	if notif.UserEmail != email {
		// do not reveal other users' notification ids
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return nil, false
	}
	return &notif, true
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
// Sets read=true. Marking an already-read notification is a no-op.
func MarkNotificationRead(c *gin.Context) {
	notif, ok := ownedNotification(c)
	if !ok {
		return
	}

	if !notif.Read {
		if err := database.GetDB().Model(notif).Update("read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		bus.Publish(c.Request.Context(), bus.Change{
			Collection: bus.CollectionNotifications,
			UserEmail:  notif.UserEmail,
		})
	}
	notif.Read = true

	c.JSON(http.StatusOK, notif)
}

// DeleteNotification handles DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	notif, ok := ownedNotification(c)
	if !ok {
		return
	}

	if err := database.GetDB().Delete(notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	bus.Publish(c.Request.Context(), bus.Change{
		Collection: bus.CollectionNotifications,
		UserEmail:  notif.UserEmail,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted",
		"id":      notif.ID,
	})
}
