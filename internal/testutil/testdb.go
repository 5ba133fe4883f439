package testutil

import (
	"testing"

	"project-collab-api/internal/bus"
	"project-collab-api/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewTestBus backs the change feed with an in-process redis for the
// duration of the test.
func NewTestBus(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	bus.Init(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { bus.Init(nil) })
	return mr
}
