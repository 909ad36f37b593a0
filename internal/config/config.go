package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig bundles everything the server needs at startup.
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" env-default:"8080"`
	GinMode       string `env:"GIN_MODE" env-default:"release"`
	DatabasePath  string `env:"DATABASE_PATH" env-default:"momentlog.db"`
	UploadDir     string `env:"UPLOAD_DIR" env-default:"web/static/uploads"`
	UploadURLPath string `env:"UPLOAD_URL_PATH" env-default:"/static/uploads"`
	AdminToken    string `env:"ADMIN_TOKEN"`
	ThumbWidth    int    `env:"THUMB_WIDTH" env-default:"480"`
	SyncSchedule  string `env:"SYNC_SCHEDULE"`

	Locket LocketConfig
}

// LocketConfig holds the fixed endpoints of the Locket/Firebase REST surface.
// The base URLs are overridable so tests can point the client at a local server.
type LocketConfig struct {
	// FirebaseAPIKey is the Locket app's public Firebase web API key. Without
	// it the login and refresh endpoints cannot be called.
	FirebaseAPIKey string `env:"LOCKET_FIREBASE_API_KEY"`
	APIBaseURL     string `env:"LOCKET_API_BASE_URL" env-default:"https://api.locketcamera.com"`
	AuthBaseURL    string `env:"LOCKET_AUTH_BASE_URL" env-default:"https://www.googleapis.com/identitytoolkit/v3/relyingparty"`
	TokenBaseURL   string `env:"LOCKET_TOKEN_BASE_URL" env-default:"https://securetoken.googleapis.com/v1"`
}

// Load reads the application configuration from environment variables,
// providing safe defaults for everything that is not security sensitive.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	cfg.AdminToken = strings.TrimSpace(cfg.AdminToken)
	cfg.SyncSchedule = strings.TrimSpace(cfg.SyncSchedule)
	cfg.Locket.FirebaseAPIKey = strings.TrimSpace(cfg.Locket.FirebaseAPIKey)
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = 480
	}

	return cfg, nil
}
