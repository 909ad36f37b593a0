package locket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAPIBaseURL   = "https://api.locketcamera.com"
	defaultAuthBaseURL  = "https://www.googleapis.com/identitytoolkit/v3/relyingparty"
	defaultTokenBaseURL = "https://securetoken.googleapis.com/v1"

	userAgent = "momentlog/1.0"
)

// ErrAPIKeyMissing is returned when no Firebase web API key is configured.
var ErrAPIKeyMissing = errors.New("locket firebase api key is not configured")

// APIError describes a non-success response from the Locket or Firebase API.
// Message is surfaced verbatim to the admin caller.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// Credentials is the auth state returned by Login and Refresh.
type Credentials struct {
	IDToken      string
	RefreshToken string
	UserID       string
	ExpiresAt    time.Time
}

// Client talks to the Locket moment API and its Firebase auth endpoints.
type Client struct {
	http      *resty.Client
	apiKey    string
	apiBase   string
	authBase  string
	tokenBase string
}

// NewClient builds a client for the production endpoints.
func NewClient(apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(20 * time.Second).
			SetHeader("User-Agent", userAgent),
		apiKey:    strings.TrimSpace(apiKey),
		apiBase:   defaultAPIBaseURL,
		authBase:  defaultAuthBaseURL,
		tokenBase: defaultTokenBaseURL,
	}
}

// SetAPIBaseURL overrides the moment API host, mainly for tests.
func (c *Client) SetAPIBaseURL(base string) {
	c.apiBase = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetAuthBaseURL overrides the Firebase password-auth host, mainly for tests.
func (c *Client) SetAuthBaseURL(base string) {
	c.authBase = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetTokenBaseURL overrides the Firebase token-refresh host, mainly for tests.
func (c *Client) SetTokenBaseURL(base string) {
	c.tokenBase = strings.TrimRight(strings.TrimSpace(base), "/")
}

type verifyPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type verifyPasswordResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	ExpiresIn    string `json:"expiresIn"`
	Email        string `json:"email"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Login exchanges email/password for a bearer credential via the Firebase
// verifyPassword endpoint Locket authenticates against.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	if c.apiKey == "" {
		return Credentials{}, ErrAPIKeyMissing
	}

	var ok verifyPasswordResponse
	var failure firebaseErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(verifyPasswordRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&ok).
		SetError(&failure).
		Post(c.authBase + "/verifyPassword")
	if err != nil {
		return Credentials{}, fmt.Errorf("call firebase auth: %w", err)
	}
	if resp.IsError() {
		return Credentials{}, upstreamError(resp.StatusCode(), failure.Error.Message, resp.String())
	}
	if strings.TrimSpace(ok.IDToken) == "" || strings.TrimSpace(ok.LocalID) == "" {
		return Credentials{}, upstreamError(resp.StatusCode(), "auth response missing id token", resp.String())
	}

	return Credentials{
		IDToken:      ok.IDToken,
		RefreshToken: ok.RefreshToken,
		UserID:       ok.LocalID,
		ExpiresAt:    expiryFrom(ok.ExpiresIn),
	}, nil
}

type refreshTokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh trades a refresh token for a fresh id token via the Firebase
// secure-token endpoint.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	if c.apiKey == "" {
		return Credentials{}, ErrAPIKeyMissing
	}

	var ok refreshTokenResponse
	var failure firebaseErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&ok).
		SetError(&failure).
		Post(c.tokenBase + "/token")
	if err != nil {
		return Credentials{}, fmt.Errorf("refresh firebase token: %w", err)
	}
	if resp.IsError() {
		return Credentials{}, upstreamError(resp.StatusCode(), failure.Error.Message, resp.String())
	}
	if strings.TrimSpace(ok.IDToken) == "" {
		return Credentials{}, upstreamError(resp.StatusCode(), "refresh response missing id token", resp.String())
	}

	next := refreshToken
	if strings.TrimSpace(ok.RefreshToken) != "" {
		next = ok.RefreshToken
	}
	return Credentials{
		IDToken:      ok.IDToken,
		RefreshToken: next,
		UserID:       ok.UserID,
		ExpiresAt:    expiryFrom(ok.ExpiresIn),
	}, nil
}

type momentRequest struct {
	Data momentRequestData `json:"data"`
}

type momentRequestData struct {
	ExcludedUsers []string `json:"excluded_users"`
	SyncToken     string   `json:"sync_token,omitempty"`
}

type momentResponse struct {
	Result struct {
		Status int      `json:"status"`
		Data   []Moment `json:"data"`
	} `json:"result"`
}

// FetchMoments lists the latest moments visible to the authenticated user.
// The bearer token and the external user id travel as headers.
func (c *Client) FetchMoments(ctx context.Context, idToken, userID string) ([]Moment, error) {
	var ok momentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+idToken).
		SetHeader("X-Locket-User", userID).
		SetHeader("Content-Type", "application/json").
		SetBody(momentRequest{Data: momentRequestData{ExcludedUsers: []string{}}}).
		SetResult(&ok).
		Post(c.apiBase + "/getLatestMomentV2")
	if err != nil {
		return nil, fmt.Errorf("fetch moments: %w", err)
	}
	if resp.IsError() {
		return nil, upstreamError(resp.StatusCode(), "", resp.String())
	}
	if ok.Result.Status != 0 && ok.Result.Status != 200 {
		return nil, upstreamError(ok.Result.Status, "moment listing rejected", resp.String())
	}

	return ok.Result.Data, nil
}

// expiryFrom converts Firebase's "seconds until expiry" string to a deadline.
// Unparseable values fall back to one hour, the documented token lifetime.
func expiryFrom(expiresIn string) time.Time {
	seconds, err := strconv.ParseInt(strings.TrimSpace(expiresIn), 10, 64)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Now().Add(time.Duration(seconds) * time.Second).UTC()
}

// upstreamError picks the most useful message available for the caller.
func upstreamError(status int, message, body string) *APIError {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = strings.TrimSpace(body)
	}
	if msg == "" {
		msg = fmt.Sprintf("upstream returned status %d", status)
	}
	const limit = 512
	if len(msg) > limit {
		msg = msg[:limit]
	}
	return &APIError{Status: status, Message: msg}
}
