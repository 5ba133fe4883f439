package livequery

import (
	"testing"
	"time"

	"project-collab-api/internal/models"
	"project-collab-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestEnrichNotifications_ResolvesAndFallsBack(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	task := models.Task{
		ID:         "t-live",
		Title:      "Logo revision",
		AssignedTo: "a@x.com",
		Status:     models.StatusPending,
		Deadline:   models.NewDeadline(time.Now().UTC()),
	}
	require.NoError(t, db.Create(&task).Error)

	notifs := []models.Notification{
		{ID: "n-1", UserEmail: "a@x.com", Message: "assigned", TaskID: "t-live"},
		{ID: "n-2", UserEmail: "a@x.com", Message: "comment", TaskID: "t-gone"},
		{ID: "n-3", UserEmail: "a@x.com", Message: "general"},
	}

	views := EnrichNotifications(db, notifs)
	require.Len(t, views, 3)
	require.Equal(t, "Logo revision", views[0].TaskTitle)
	require.Equal(t, FallbackTaskTitle, views[1].TaskTitle)
	require.Empty(t, views[2].TaskTitle)

	InvalidateTitle("t-live")
	InvalidateTitle("t-gone")
}

func TestEnrichNotifications_CachesLookups(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	task := models.Task{
		ID:         "t-cached",
		Title:      "Site copy",
		AssignedTo: "a@x.com",
		Status:     models.StatusPending,
		Deadline:   models.NewDeadline(time.Now().UTC()),
	}
	require.NoError(t, db.Create(&task).Error)
	t.Cleanup(func() { InvalidateTitle("t-cached") })

	notifs := []models.Notification{
		{ID: "n-1", UserEmail: "a@x.com", Message: "one", TaskID: "t-cached"},
	}
	views := EnrichNotifications(db, notifs)
	require.Equal(t, "Site copy", views[0].TaskTitle)

	// the cached title survives the row being renamed underneath it
	require.NoError(t, db.Model(&task).Update("title", "renamed").Error)
	views = EnrichNotifications(db, notifs)
	require.Equal(t, "Site copy", views[0].TaskTitle)

	// until the edit path invalidates it
	InvalidateTitle("t-cached")
	views = EnrichNotifications(db, notifs)
	require.Equal(t, "renamed", views[0].TaskTitle)
}
