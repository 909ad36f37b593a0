package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momentlog/internal/config"
	"github.com/momentlog/internal/db"
	"github.com/momentlog/internal/locket"
)

// fakeLocket serves the three upstream endpoints the integration calls.
type fakeLocket struct {
	moments     []locket.Moment
	loginStatus int
	loginBody   string
	fetchCalls  int
}

func newFakeLocket(t *testing.T) (*fakeLocket, string) {
	t.Helper()

	f := &fakeLocket{}
	mux := http.NewServeMux()
	mux.HandleFunc("/verifyPassword", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.loginStatus != 0 {
			w.WriteHeader(f.loginStatus)
			w.Write([]byte(f.loginBody))
			return
		}
		w.Write([]byte(`{"idToken":"id-test","refreshToken":"refresh-test","localId":"uid-test","expiresIn":"3600"}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id_token":"id-refreshed","refresh_token":"refresh-test","user_id":"uid-test","expires_in":"3600"}`))
	})
	mux.HandleFunc("/getLatestMomentV2", func(w http.ResponseWriter, r *http.Request) {
		f.fetchCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"status": 200, "data": f.moments},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, server.URL
}

func setupLocketAPI(t *testing.T) (*API, *fakeLocket, func()) {
	t.Helper()

	fake, baseURL := newFakeLocket(t)
	api, cleanup := setupTestAPI(t, config.AppConfig{
		Locket: config.LocketConfig{
			FirebaseAPIKey: "test-key",
			APIBaseURL:     baseURL,
			AuthBaseURL:    baseURL,
			TokenBaseURL:   baseURL,
		},
	})
	return api, fake, cleanup
}

func seedLocketCredential(t *testing.T, api *API) {
	t.Helper()

	err := api.creds.Save(locket.Credentials{
		IDToken:      "id-test",
		RefreshToken: "refresh-test",
		UserID:       "uid-test",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}
}

func feedMoment(uid, caption string, ts int64) locket.Moment {
	return locket.Moment{
		CanonicalUID: uid,
		ThumbnailURL: "https://cdn.example.com/" + uid + ".jpg",
		Caption:      caption,
		Date:         locket.MomentDate{Seconds: ts},
	}
}

func performLocket(t *testing.T, method, target string, payload any, handlerFn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handlerFn(c)
	return w
}

func TestLocketLoginStoresCredential(t *testing.T) {
	api, _, cleanup := setupLocketAPI(t)
	defer cleanup()

	w := performLocket(t, http.MethodPost, "/api/locket/login", map[string]string{
		"email":    "me@example.com",
		"password": "pw",
	}, api.LocketLogin)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["user_id"] != "uid-test" || body["id_token"] != "id-test" {
		t.Fatalf("unexpected login response %v", body)
	}

	var setting db.SystemSetting
	if err := db.DB.Where("key = ?", db.SettingKeyLocketIDToken).First(&setting).Error; err != nil {
		t.Fatalf("expected stored id token: %v", err)
	}
	if setting.Value != "id-test" {
		t.Fatalf("unexpected stored token %q", setting.Value)
	}
}

func TestLocketLoginValidation(t *testing.T) {
	api, _, cleanup := setupLocketAPI(t)
	defer cleanup()

	w := performLocket(t, http.MethodPost, "/api/locket/login", map[string]string{
		"email": "",
	}, api.LocketLogin)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "email and password are required" {
		t.Fatalf("unexpected error message %v", body["error"])
	}
}

func TestLocketLoginUpstreamRejection(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	fake.loginStatus = http.StatusBadRequest
	fake.loginBody = `{"error":{"code":400,"message":"INVALID_PASSWORD"}}`

	w := performLocket(t, http.MethodPost, "/api/locket/login", map[string]string{
		"email":    "me@example.com",
		"password": "wrong",
	}, api.LocketLogin)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "INVALID_PASSWORD" {
		t.Fatalf("expected verbatim upstream message, got %v", body["error"])
	}
}

func TestLocketMomentsRequiresLogin(t *testing.T) {
	api, _, cleanup := setupLocketAPI(t)
	defer cleanup()

	w := performLocket(t, http.MethodGet, "/api/locket/moments", nil, api.LocketMoments)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "not logged in to locket" {
		t.Fatalf("unexpected error message %v", body["error"])
	}
}

func TestLocketMomentsListsFeed(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	seedLocketCredential(t, api)
	fake.moments = []locket.Moment{
		feedMoment("moment-one", "first", 1700000000),
		feedMoment("moment-two", "second", 1700000100),
	}

	w := performLocket(t, http.MethodGet, "/api/locket/moments", nil, api.LocketMoments)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 2 {
		t.Fatalf("expected 2 moments, got %v", body["count"])
	}
	moments := body["moments"].([]any)
	if moments[0].(map[string]any)["canonical_uid"] != "moment-one" {
		t.Fatalf("unexpected moment payload %v", moments[0])
	}
}

func TestLocketSyncIsIdempotent(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	seedLocketCredential(t, api)
	fake.moments = []locket.Moment{
		feedMoment("moment-one", "first", 1700000000),
		feedMoment("moment-two", "second", 1700000100),
	}

	w := performLocket(t, http.MethodPost, "/api/locket/sync", nil, api.LocketSync)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["synced"].(float64) != 2 || body["total"].(float64) != 2 {
		t.Fatalf("unexpected first sync response %v", body)
	}

	var record db.GalleryImage
	if err := db.DB.Where("slug = ?", "locket-moment-one").First(&record).Error; err != nil {
		t.Fatalf("expected synced record: %v", err)
	}
	if record.Source != db.SourceLocket {
		t.Fatalf("unexpected source %q", record.Source)
	}

	w = performLocket(t, http.MethodPost, "/api/locket/sync", nil, api.LocketSync)
	if w.Code != http.StatusOK {
		t.Fatalf("expected rerun to succeed, got %d", w.Code)
	}
	body = decodeBody(t, w)
	if body["synced"].(float64) != 0 || body["total"].(float64) != 2 {
		t.Fatalf("expected idempotent rerun, got %v", body)
	}
}

func TestLocketSyncMalformedFeed(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	seedLocketCredential(t, api)
	broken := feedMoment("moment-bad", "broken", 1700000000)
	broken.ThumbnailURL = ""
	fake.moments = []locket.Moment{broken}

	w := performLocket(t, http.MethodPost, "/api/locket/sync", nil, api.LocketSync)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if !strings.Contains(body["error"].(string), "malformed moment payload") {
		t.Fatalf("unexpected error message %v", body["error"])
	}

	var count int64
	if err := db.DB.Model(&db.GalleryImage{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing written, got %d records", count)
	}
}

func TestLocketResetRebuildsGallery(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	seedLocketCredential(t, api)
	seedImage(t, "my-upload", 0)
	seedImage(t, "locket-stale", 0)

	fake.moments = []locket.Moment{
		feedMoment("moment-one", "first", 1700000000),
		feedMoment("moment-two", "second", 1700000100),
	}

	w := performLocket(t, http.MethodPost, "/api/locket/reset", nil, api.LocketReset)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["count"].(float64) != 2 || body["total"].(float64) != 2 {
		t.Fatalf("unexpected reset response %v", body)
	}

	var slugs []string
	if err := db.DB.Model(&db.GalleryImage{}).Order("slug").Pluck("slug", &slugs).Error; err != nil {
		t.Fatalf("failed to list slugs: %v", err)
	}
	if len(slugs) != 2 || slugs[0] != "locket-moment-one" || slugs[1] != "locket-moment-two" {
		t.Fatalf("expected gallery to mirror the feed, got %v", slugs)
	}
}

func TestLocketStatusLifecycle(t *testing.T) {
	api, fake, cleanup := setupLocketAPI(t)
	defer cleanup()

	w := performLocket(t, http.MethodGet, "/api/locket/status", nil, api.LocketStatus)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["authenticated"].(bool) {
		t.Fatalf("expected unauthenticated status, got %v", body)
	}

	seedLocketCredential(t, api)
	fake.moments = []locket.Moment{feedMoment("moment-one", "first", 1700000000)}

	if w := performLocket(t, http.MethodPost, "/api/locket/sync", nil, api.LocketSync); w.Code != http.StatusOK {
		t.Fatalf("expected sync to succeed, got %d", w.Code)
	}

	w = performLocket(t, http.MethodGet, "/api/locket/status", nil, api.LocketStatus)
	body := decodeBody(t, w)
	if !body["authenticated"].(bool) {
		t.Fatalf("expected authenticated status, got %v", body)
	}
	if body["user_id"] != "uid-test" {
		t.Fatalf("unexpected user id %v", body["user_id"])
	}
	if body["last_sync_count"].(float64) != 1 {
		t.Fatalf("unexpected last sync count %v", body["last_sync_count"])
	}
}
