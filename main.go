package main

import (
	"time"

	"github.com/postdeck/postdeck/config"
	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/routes"
	"github.com/postdeck/postdeck/storage"
	"github.com/postdeck/postdeck/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{})

	store, err := storage.NewObjectStore(cfg)
	if err != nil {
		utils.Sugar.Fatalf("failed to initialize object storage: %v", err)
	}
	gateway := storage.NewGateway(store, cfg.PresignExpiry())

	// Garbage-collect abandoned pending uploads on a timer (best-effort)
	stopCleaner := func() {}
	if cfg.CleanupEnabled {
		stopCleaner = storage.StartPendingCleaner(gateway,
			time.Duration(cfg.CleanupInitialMin)*time.Minute,
			time.Duration(cfg.CleanupIntervalMin)*time.Minute,
		)
	}

	r := routes.SetupRouter(db, gateway)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, stopCleaner); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
