package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/momentlog/internal/config"
	"github.com/momentlog/internal/db"
	"github.com/momentlog/internal/handler"
	"github.com/momentlog/internal/jobs"
	"github.com/momentlog/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)
	setupLogger(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		slog.Error("failed to initialize database", "err", err)
		os.Exit(1)
	}

	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set, admin endpoints will reject every request")
	}

	api := handler.NewAPI(db.DB, cfg)

	manager := jobs.NewManager(cfg.SyncSchedule, jobs.NewSyncJob(api.Sync()))
	if err := manager.RegisterJobs(); err != nil {
		slog.Error("failed to register cron jobs", "err", err)
		os.Exit(1)
	}
	manager.Start()
	defer manager.Stop()

	r := router.SetupRouter(api, cfg.AdminToken, cfg.UploadDir, cfg.UploadURLPath)

	slog.Info("server listening", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("failed to run server", "err", err)
		os.Exit(1)
	}
}

func setupLogger(mode string) {
	var h slog.Handler
	if mode == gin.ReleaseMode {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}
