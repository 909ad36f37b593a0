package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momentlog/internal/locket"
	"github.com/momentlog/internal/service"
)

type locketLoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LocketLogin exchanges account credentials for tokens and stores them.
func (a *API) LocketLogin(c *gin.Context) {
	var payload locketLoginPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	creds, err := a.sync.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondLocketError(c, err, "failed to log in to locket")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "logged in",
		"user_id":    creds.UserID,
		"id_token":   creds.IDToken,
		"expires_at": creds.ExpiresAt,
	})
}

// LocketMoments returns the account's current moment listing.
func (a *API) LocketMoments(c *gin.Context) {
	moments, err := a.sync.Moments(c.Request.Context())
	if err != nil {
		respondLocketError(c, err, "failed to fetch moments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"moments": moments, "count": len(moments)})
}

// LocketSync merges new moments into the gallery.
func (a *API) LocketSync(c *gin.Context) {
	result, err := a.sync.Sync(c.Request.Context())
	if err != nil {
		respondLocketError(c, err, "failed to sync moments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "sync complete",
		"synced":  result.Added,
		"fetched": result.Fetched,
		"total":   result.Total,
	})
}

// LocketReset rebuilds the gallery so it mirrors the moment feed exactly.
func (a *API) LocketReset(c *gin.Context) {
	result, err := a.sync.Reset(c.Request.Context())
	if err != nil {
		respondLocketError(c, err, "failed to reset gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "reset complete",
		"count":   result.Added,
		"total":   result.Total,
	})
}

// LocketStatus reports the stored credential and last sync run.
func (a *API) LocketStatus(c *gin.Context) {
	status, err := a.creds.Status()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load status")
		return
	}

	c.JSON(http.StatusOK, status)
}

// respondLocketError maps integration errors onto the API statuses. Upstream
// rejections keep their original message.
func respondLocketError(c *gin.Context, err error, fallback string) {
	var apiErr *locket.APIError
	switch {
	case errors.Is(err, service.ErrLoginIncomplete):
		respondError(c, http.StatusBadRequest, "email and password are required")
	case errors.Is(err, service.ErrNotAuthenticated):
		respondError(c, http.StatusUnauthorized, "not logged in to locket")
	case errors.Is(err, service.ErrCredentialExpired):
		respondError(c, http.StatusUnauthorized, "locket session expired, log in again")
	case errors.Is(err, locket.ErrAPIKeyMissing):
		respondError(c, http.StatusInternalServerError, "locket api key is not configured")
	case errors.As(err, &apiErr):
		respondError(c, http.StatusBadGateway, apiErr.Message)
	case errors.Is(err, locket.ErrMalformedMoment):
		respondError(c, http.StatusBadGateway, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
