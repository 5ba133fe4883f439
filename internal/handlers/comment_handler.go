package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"project-collab-api/internal/bus"
	"project-collab-api/internal/database"
	"project-collab-api/internal/images"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// blobStore, when configured, receives image payloads too large to
// inline. Left nil, every accepted image is inlined as a data URL.
var blobStore images.Uploader

// SetBlobStore wires the optional blob store for large comment images.
func SetBlobStore(store images.Uploader) {
	blobStore = store
}

// serverNow is the server-assigned timestamp source, stubbed in tests.
var serverNow = func() time.Time { return time.Now().UTC() }

// commentTextRequest is the JSON shape for text-only comments; image
// attachments require multipart/form-data.
type commentTextRequest struct {
	Text string `json:"text"`
}

/*
*
GetComments handles GET /api/tasks/:id/comments
Ordered by creation time ascending. Comments of a deleted task remain
readable by admins (orphaning is accepted by contract).
*/
func GetComments(c *gin.Context) {
	email := c.GetString("email")
	role := c.GetString("role")

	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var task models.Task
	err := database.GetDB().Where("id = ?", taskID).First(&task).Error
	switch {
	case err == nil:
		if role != string(models.RoleAdmin) && task.AssignedTo != email {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Task is gone; its comments are orphaned but still resolvable.
		if role != string(models.RoleAdmin) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	var comments []models.Comment
	if err := database.GetDB().Where("task_id = ?", taskID).Order("created_at asc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}

/*
*
PostComment handles POST /api/tasks/:id/comments
Accepts multipart/form-data (text field plus image files) or a plain
JSON body for text-only comments. Requires text or at least one valid
image; otherwise nothing is written.
*/
func PostComment(c *gin.Context) {
	email := c.GetString("email")
	role := c.GetString("role")

	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var task models.Task
	if err := database.GetDB().Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	// Only the admin side or the assignee may comment
	if role != string(models.RoleAdmin) && task.AssignedTo != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot comment on this task"})
		return
	}

	text, result, err := readCommentInput(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process images"})
		return
	}

	if text == "" && len(result.Accepted) == 0 {
		msg := "Comment requires text or at least one image"
		if len(result.Skipped) > 0 {
			msg = "All attached files were rejected. Images must be under 2MB."
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "skipped": result.Skipped})
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Text:      text,
		Images:    result.Accepted,
		Author:    email,
		CreatedAt: serverNow(),
	}
	if err := database.GetDB().Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post comment"})
		return
	}

	bus.Publish(c.Request.Context(), bus.Change{Collection: bus.CollectionComments, TaskID: taskID})

	notifyCommentPosted(c, task, comment)

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
		"skipped": result.Skipped,
	})
}

// readCommentInput extracts the text and attachments from either body shape.
func readCommentInput(c *gin.Context) (string, images.Result, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/") {
		var req commentTextRequest
		// an empty or malformed JSON body is just an empty comment; the
		// at-least-one-of check rejects it with a clearer message
		_ = c.ShouldBindJSON(&req)
		return sanitizeText(req.Text), images.Result{}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", images.Result{}, err
	}

	text := ""
	if vals := form.Value["text"]; len(vals) > 0 {
		text = sanitizeText(vals[0])
	}

	result, err := images.Process(c.Request.Context(), form.File["images"], blobStore)
	if err != nil {
		return "", images.Result{}, err
	}
	return text, result, nil
}

// notifyCommentPosted addresses the notification to the other party:
// the task creator when the assignee comments, the assignee otherwise.
// An author never notifies themself. Failures are logged, not rolled
// back; the comment stands either way.
func notifyCommentPosted(c *gin.Context, task models.Task, comment models.Comment) {
	target := task.AssignedTo
	if comment.Author == task.AssignedTo {
		target = task.CreatedBy
	}
	if target == "" || target == comment.Author {
		return
	}

	notif := models.Notification{
		ID:        uuid.NewString(),
		UserEmail: target,
		Message:   fmt.Sprintf("New comment on task: %s", task.Title),
		Timestamp: serverNow(),
		Read:      false,
		Type:      models.NotificationComment,
		TaskID:    task.ID,
	}
	if err := database.GetDB().Create(&notif).Error; err != nil {
		logging.Logger.WithField("taskId", task.ID).Errorf("comment notification not written: %v", err)
		return
	}

	bus.Publish(c.Request.Context(), bus.Change{
		Collection: bus.CollectionNotifications,
		TaskID:     task.ID,
		UserEmail:  target,
	})
}
