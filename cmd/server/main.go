package main

import (
	"context"
	"time"

	"project-collab-api/internal/blobstore"
	"project-collab-api/internal/bus"
	"project-collab-api/internal/config"
	"project-collab-api/internal/database"
	"project-collab-api/internal/handlers"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/routes"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Get()
	logging.InitLogger(cfg.LogFile)

	// Init database
	database.InitDB()

	// Change feed backing the live query sessions. REST keeps working
	// without it; live views just stop refreshing.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logging.Logger.Warnf("redis unreachable at %s, realtime updates disabled: %v", cfg.RedisAddr, err)
	} else {
		bus.Init(redisClient)
	}
	cancel()

	// Optional blob store for large comment images
	store, err := blobstore.New(context.Background(), cfg)
	if err != nil {
		logging.Logger.Fatal("blob store init: ", err)
	}
	if store != nil {
		handlers.SetBlobStore(store)
		logging.Logger.Info("blob store connected, large images stored by URL")
	}

	// Setup the routes (public, protected and admin routes)
	ginRoutes := routes.SetupRoutes()

	port := ":" + cfg.Port
	logging.Logger.Infof("Server starting on port %s", port)

	if err := ginRoutes.Run(port); err != nil {
		logging.Logger.Fatal("Failed to start server: ", err)
	}
}
