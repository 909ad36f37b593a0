package handler

import (
	"github.com/momentlog/internal/config"
	"github.com/momentlog/internal/locket"
	"github.com/momentlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	images  *service.ImageService
	uploads *service.UploadService
	creds   *service.CredentialService
	sync    *service.SyncService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	client := locket.NewClient(cfg.Locket.FirebaseAPIKey)
	if cfg.Locket.APIBaseURL != "" {
		client.SetAPIBaseURL(cfg.Locket.APIBaseURL)
	}
	if cfg.Locket.AuthBaseURL != "" {
		client.SetAuthBaseURL(cfg.Locket.AuthBaseURL)
	}
	if cfg.Locket.TokenBaseURL != "" {
		client.SetTokenBaseURL(cfg.Locket.TokenBaseURL)
	}

	images := service.NewImageService(gdb)
	creds := service.NewCredentialService(gdb, client)

	return &API{
		images:  images,
		uploads: service.NewUploadService(images, cfg.UploadDir, cfg.UploadURLPath, cfg.ThumbWidth),
		creds:   creds,
		sync:    service.NewSyncService(client, creds, images),
	}
}

// Sync exposes the sync service so background jobs can share it.
func (a *API) Sync() *service.SyncService {
	return a.sync
}
