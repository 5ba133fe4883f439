package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"project-collab-api/internal/bus"
	"project-collab-api/internal/database"
	"project-collab-api/internal/livequery"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	AssignedTo  string          `json:"assignedTo" binding:"required,email"`
	Deadline    models.Deadline `json:"deadline" binding:"required"`
	DriveLink   string          `json:"driveLink"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	AssignedTo  *string          `json:"assignedTo"`
	Deadline    *models.Deadline `json:"deadline"`
	DriveLink   *string          `json:"driveLink"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeText strips markup so descriptions are stored as plain text
// and can never be rendered as live HTML downstream.
func sanitizeText(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

/*
*
GetTasks handles GET /api/tasks
Admins see every task; users see only tasks assigned to them.
Ordered by deadline ascending.
*/
func GetTasks(c *gin.Context) {
	email := c.GetString("email")
	role := c.GetString("role")

	query := database.GetDB().Model(&models.Task{}).Order("deadline asc")
	if role != string(models.RoleAdmin) {
		query = query.Where("assigned_to = ?", email)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch tasks",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

/*
*
CreateTask handles POST /api/tasks (admin only)
Creates a pending task and notifies the assignee.
*/
func CreateTask(c *gin.Context) {
	email := c.GetString("email")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// The assignee must be an existing account
	var assignee models.User
	if err := database.GetDB().Where("email = ?", req.AssignedTo).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate assignee"})
		}
		return
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       sanitizeText(req.Title),
		Description: sanitizeText(req.Description),
		AssignedTo:  req.AssignedTo,
		CreatedBy:   email,
		Status:      models.StatusPending,
		Deadline:    req.Deadline,
		DriveLink:   strings.TrimSpace(req.DriveLink),
	}

	if err := database.GetDB().Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create task",
		})
		return
	}

	notifyTaskAssigned(c, task)

	bus.Publish(c.Request.Context(), bus.Change{Collection: bus.CollectionTasks, TaskID: task.ID})

	c.JSON(http.StatusCreated, task)
}

// notifyTaskAssigned writes the assignment notification. A failure here
// is logged but does not roll back the created task.
func notifyTaskAssigned(c *gin.Context, task models.Task) {
	notif := models.Notification{
		ID:        uuid.NewString(),
		UserEmail: task.AssignedTo,
		Message:   fmt.Sprintf("You have been assigned a new task: %s", task.Title),
		Timestamp: serverNow(),
		Read:      false,
		Type:      models.NotificationTask,
		TaskID:    task.ID,
	}
	if err := database.GetDB().Create(&notif).Error; err != nil {
		logging.Logger.WithField("taskId", task.ID).Errorf("assignment notification not written: %v", err)
		return
	}
	bus.Publish(c.Request.Context(), bus.Change{
		Collection: bus.CollectionNotifications,
		TaskID:     task.ID,
		UserEmail:  task.AssignedTo,
	})
}

// UpdateTask handles PUT /api/tasks/:id (admin only)
// Overwrites the provided fields; editing does not notify anyone.
func UpdateTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Task ID is required",
		})
		return
	}

	var existingTask models.Task
	result := database.GetDB().Where("id = ?", taskID).First(&existingTask)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to fetch task",
			})
		}
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if req.Title != nil {
		existingTask.Title = sanitizeText(*req.Title)
	}
	if req.Description != nil {
		existingTask.Description = sanitizeText(*req.Description)
	}
	if req.AssignedTo != nil {
		var assignee models.User
		if err := database.GetDB().Where("email = ?", *req.AssignedTo).First(&assignee).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee not found"})
			return
		}
		existingTask.AssignedTo = *req.AssignedTo
	}
	if req.Deadline != nil {
		existingTask.Deadline = *req.Deadline
	}
	if req.DriveLink != nil {
		existingTask.DriveLink = strings.TrimSpace(*req.DriveLink)
	}

	if err := database.GetDB().Save(&existingTask).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update task",
		})
		return
	}

	livequery.InvalidateTitle(existingTask.ID)
	bus.Publish(c.Request.Context(), bus.Change{Collection: bus.CollectionTasks, TaskID: existingTask.ID})

	c.JSON(http.StatusOK, existingTask)
}

// GetTaskByID handles GET /api/tasks/:id
// Admins may read any task; users only their own.
func GetTaskByID(c *gin.Context) {
	email := c.GetString("email")
	role := c.GetString("role")

	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var task models.Task
	result := database.GetDB().Where("id = ?", taskID).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	if role != string(models.RoleAdmin) && task.AssignedTo != email {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status (admin only)
// Overwrites only the status field.
func UpdateTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	var task models.Task
	result := database.GetDB().Where("id = ?", taskID).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	task.Status = req.Status
	if err := database.GetDB().Model(&task).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	bus.Publish(c.Request.Context(), bus.Change{Collection: bus.CollectionTasks, TaskID: task.ID})

	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id (admin only)
// Deletes the task document only. Its comments and notifications are
// orphaned by contract; every reader renders a fallback for them.
func DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Task ID is required",
		})
		return
	}

	var task models.Task
	result := database.GetDB().Where("id = ?", taskID).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to fetch task",
			})
		}
		return
	}

	if err := database.GetDB().Unscoped().Delete(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete task",
		})
		return
	}

	livequery.InvalidateTitle(taskID)
	bus.Publish(c.Request.Context(), bus.Change{Collection: bus.CollectionTasks, TaskID: taskID})

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}
