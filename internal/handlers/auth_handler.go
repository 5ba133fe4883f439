package handlers

import (
	"errors"
	"net/http"

	"project-collab-api/internal/auth"
	"project-collab-api/internal/config"
	"project-collab-api/internal/database"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/models"
	"project-collab-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignUpRequest represents the sign-up request payload. AdminCode, when
// it matches the configured code, grants the admin role; otherwise the
// account is a regular user.
type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	WhatsApp  string `json:"whatsapp"`
	AdminCode string `json:"adminCode"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the response for both sign-up and login
type AuthResponse struct {
	Token  string      `json:"token"`
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// SignUp handles POST /api/signup
// Creates the user document and returns a session token.
func SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Email and a password of at least 6 characters are required.",
		})
		return
	}

	role := models.RoleUser
	if code := config.Get().AdminSignupCode; code != "" && req.AdminCode == code {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: hash,
		Role:     role,
		WhatsApp: req.WhatsApp,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		// sqlite unique violations do not always map to gorm's sentinel
		var existing models.User
		if database.GetDB().Where("email = ?", req.Email).First(&existing).Error == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	logging.Logger.WithField("email", user.Email).Info("account created")
	c.JSON(http.StatusCreated, AuthResponse{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// Login handles POST /api/login
// Verifies credentials and reads the user's role once for the session.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Email and password are required.",
		})
		return
	}

	var user models.User
	if err := database.GetDB().Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// Logout handles POST /api/logout
// Closes every live session the caller holds, releasing their
// subscriptions before the client navigates away.
func Logout(c *gin.Context) {
	email := c.GetString("email")
	realtime.GetHub().CloseUser(email)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
