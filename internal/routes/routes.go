package routes

import (
	"project-collab-api/internal/handlers"
	"project-collab-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Collab API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/signup", handlers.SignUp)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.POST("/logout", handlers.Logout)

		// Task reads (role-scoped inside the handlers)
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)

		// Comments
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetComments)
		protectedRoutes.POST("/tasks/:id/comments", handlers.PostComment)

		// Notifications (owner-gated inside the handlers)
		protectedRoutes.GET("/notifications", handlers.GetNotifications)
		protectedRoutes.PATCH("/notifications/:id/read", handlers.MarkNotificationRead)
		protectedRoutes.DELETE("/notifications/:id", handlers.DeleteNotification)

		// Live query session
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	// Admin-only routes
	adminRoutes := protectedRoutes.Group("")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.POST("/tasks", handlers.CreateTask)
		adminRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		adminRoutes.PATCH("/tasks/:id/status", handlers.UpdateTaskStatus)
		adminRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		adminRoutes.GET("/users", handlers.GetAllUsers)
	}

	return ginRouter
}
