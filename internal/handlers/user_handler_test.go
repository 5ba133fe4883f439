package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"project-collab-api/internal/database"
	"project-collab-api/internal/middleware"
	"project-collab-api/internal/models"
	"project-collab-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func userRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", GetAllUsers)
	return r
}

func TestGetAllUsers_OmitsPasswordHashes(t *testing.T) {
	r := userRouter(t)
	admin := seedUser(t, "boss@x.com", models.RoleAdmin)
	seedUser(t, "a@x.com", models.RoleUser)

	w := doJSON(t, r, http.MethodGet, "/api/users", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []UserResponse `json:"users"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.NotContains(t, w.Body.String(), "password")
}

func TestGetAllUsers_ForbiddenForUsers(t *testing.T) {
	r := userRouter(t)
	user := seedUser(t, "a@x.com", models.RoleUser)

	w := doJSON(t, r, http.MethodGet, "/api/users", tokenFor(t, user), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
