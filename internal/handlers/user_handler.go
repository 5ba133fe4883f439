package handlers

import (
	"net/http"

	"project-collab-api/internal/database"
	"project-collab-api/internal/models"

	"github.com/gin-gonic/gin"
)

type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	WhatsApp string      `json:"whatsapp,omitempty"`
}

// GetAllUsers returns all users (admin only, one-shot)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:       u.ID,
			Email:    u.Email,
			Role:     u.Role,
			WhatsApp: u.WhatsApp,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}
