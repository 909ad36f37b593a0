package config

import (
	"os"
	"testing"
)

// clearConfigEnv unsets every variable Load reads. t.Setenv registers the
// restore, the explicit unset makes the variable truly absent for the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()

	keys := []string{
		"LISTEN_ADDR", "PORT", "GIN_MODE", "DATABASE_PATH",
		"UPLOAD_DIR", "UPLOAD_URL_PATH", "ADMIN_TOKEN", "THUMB_WIDTH",
		"SYNC_SCHEDULE", "LOCKET_FIREBASE_API_KEY", "LOCKET_API_BASE_URL",
		"LOCKET_AUTH_BASE_URL", "LOCKET_TOKEN_BASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected release mode default, got %q", cfg.GinMode)
	}
	if cfg.DatabasePath != "momentlog.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.UploadDir != "web/static/uploads" || cfg.UploadURLPath != "/static/uploads" {
		t.Fatalf("unexpected upload paths %q %q", cfg.UploadDir, cfg.UploadURLPath)
	}
	if cfg.ThumbWidth != 480 {
		t.Fatalf("expected default thumb width 480, got %d", cfg.ThumbWidth)
	}
	if cfg.AdminToken != "" || cfg.SyncSchedule != "" {
		t.Fatalf("expected empty token and schedule by default")
	}
	if cfg.Locket.APIBaseURL != "https://api.locketcamera.com" {
		t.Fatalf("unexpected locket api base %q", cfg.Locket.APIBaseURL)
	}
	if cfg.Locket.AuthBaseURL != "https://www.googleapis.com/identitytoolkit/v3/relyingparty" {
		t.Fatalf("unexpected auth base %q", cfg.Locket.AuthBaseURL)
	}
	if cfg.Locket.TokenBaseURL != "https://securetoken.googleapis.com/v1" {
		t.Fatalf("unexpected token base %q", cfg.Locket.TokenBaseURL)
	}
}

func TestLoadPortBuildsListenAddr(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr built from port, got %q", cfg.ListenAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LISTEN_ADDR", " 127.0.0.1:3000 ")
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("ADMIN_TOKEN", " secret-token ")
	t.Setenv("THUMB_WIDTH", "720")
	t.Setenv("SYNC_SCHEDULE", "0 */30 * * * *")
	t.Setenv("LOCKET_FIREBASE_API_KEY", " web-api-key ")
	t.Setenv("LOCKET_API_BASE_URL", "http://127.0.0.1:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:3000" {
		t.Fatalf("expected explicit listen addr to win, got %q", cfg.ListenAddr)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("unexpected gin mode %q", cfg.GinMode)
	}
	if cfg.AdminToken != "secret-token" {
		t.Fatalf("expected trimmed admin token, got %q", cfg.AdminToken)
	}
	if cfg.ThumbWidth != 720 {
		t.Fatalf("unexpected thumb width %d", cfg.ThumbWidth)
	}
	if cfg.SyncSchedule != "0 */30 * * * *" {
		t.Fatalf("unexpected sync schedule %q", cfg.SyncSchedule)
	}
	if cfg.Locket.FirebaseAPIKey != "web-api-key" {
		t.Fatalf("expected trimmed api key, got %q", cfg.Locket.FirebaseAPIKey)
	}
	if cfg.Locket.APIBaseURL != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected locket api base %q", cfg.Locket.APIBaseURL)
	}
}

func TestLoadThumbWidthFallsBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("THUMB_WIDTH", "-10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ThumbWidth != 480 {
		t.Fatalf("expected non-positive width to fall back, got %d", cfg.ThumbWidth)
	}
}

func TestLoadRejectsUnparseableWidth(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("THUMB_WIDTH", "wide")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable thumb width")
	}
}
