package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/momentlog/internal/db"
	"github.com/momentlog/internal/locket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotAuthenticated means no Locket credential has been stored yet.
	ErrNotAuthenticated = errors.New("not logged in to locket")
	// ErrCredentialExpired means the stored credential lapsed and could not be refreshed.
	ErrCredentialExpired = errors.New("locket credential expired")
)

// expirySlack renews the id token slightly before its deadline so a call in
// flight does not race the expiry.
const expirySlack = 2 * time.Minute

// tokenRefresher is the slice of the Locket client the credential service needs.
type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (locket.Credentials, error)
}

// CredentialService persists the Locket auth state in the system settings
// table and keeps the id token fresh.
type CredentialService struct {
	db        *gorm.DB
	refresher tokenRefresher
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(gdb *gorm.DB, refresher tokenRefresher) *CredentialService {
	return &CredentialService{db: gdb, refresher: refresher}
}

var credentialKeys = []string{
	db.SettingKeyLocketIDToken,
	db.SettingKeyLocketRefreshToken,
	db.SettingKeyLocketUserID,
	db.SettingKeyLocketTokenExpiry,
}

// Save stores a credential, replacing whatever was there before.
func (s *CredentialService) Save(creds locket.Credentials) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyLocketIDToken, creds.IDToken); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyLocketRefreshToken, creds.RefreshToken); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyLocketUserID, creds.UserID); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyLocketTokenExpiry, creds.ExpiresAt.UTC().Format(time.RFC3339))
	})
	if err != nil {
		return fmt.Errorf("save locket credential: %w", err)
	}
	return nil
}

// Load reads the stored credential. ErrNotAuthenticated when none exists.
func (s *CredentialService) Load() (locket.Credentials, error) {
	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", credentialKeys).Find(&records).Error; err != nil {
		return locket.Credentials{}, fmt.Errorf("load locket credential: %w", err)
	}

	var creds locket.Credentials
	for _, record := range records {
		switch record.Key {
		case db.SettingKeyLocketIDToken:
			creds.IDToken = record.Value
		case db.SettingKeyLocketRefreshToken:
			creds.RefreshToken = record.Value
		case db.SettingKeyLocketUserID:
			creds.UserID = record.Value
		case db.SettingKeyLocketTokenExpiry:
			if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(record.Value)); err == nil {
				creds.ExpiresAt = parsed
			}
		}
	}

	if strings.TrimSpace(creds.IDToken) == "" {
		return locket.Credentials{}, ErrNotAuthenticated
	}
	return creds, nil
}

// Ensure returns a usable credential, refreshing through the token endpoint
// when the stored one is past (or close to) its expiry.
func (s *CredentialService) Ensure(ctx context.Context) (locket.Credentials, error) {
	creds, err := s.Load()
	if err != nil {
		return locket.Credentials{}, err
	}

	if time.Now().Before(creds.ExpiresAt.Add(-expirySlack)) {
		return creds, nil
	}

	if strings.TrimSpace(creds.RefreshToken) == "" {
		return locket.Credentials{}, ErrCredentialExpired
	}

	fresh, err := s.refresher.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return locket.Credentials{}, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
	}
	if strings.TrimSpace(fresh.UserID) == "" {
		fresh.UserID = creds.UserID
	}

	if err := s.Save(fresh); err != nil {
		return locket.Credentials{}, err
	}
	return fresh, nil
}

// RecordSyncResult stores when the last sync ran and how many records it added.
func (s *CredentialService) RecordSyncResult(at time.Time, count int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyLocketLastSyncAt, at.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyLocketLastSyncCount, strconv.Itoa(count))
	})
	if err != nil {
		return fmt.Errorf("record sync result: %w", err)
	}
	return nil
}

// CredentialStatus summarizes the integration state for the admin UI.
type CredentialStatus struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"user_id,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastSyncAt    time.Time `json:"last_sync_at"`
	LastSyncCount int       `json:"last_sync_count"`
}

// Status reports whether a credential is stored and what the last sync did.
func (s *CredentialService) Status() (CredentialStatus, error) {
	status := CredentialStatus{}

	creds, err := s.Load()
	switch {
	case err == nil:
		status.Authenticated = true
		status.UserID = creds.UserID
		status.ExpiresAt = creds.ExpiresAt
	case errors.Is(err, ErrNotAuthenticated):
		// fine, not logged in yet
	default:
		return status, err
	}

	var records []db.SystemSetting
	keys := []string{db.SettingKeyLocketLastSyncAt, db.SettingKeyLocketLastSyncCount}
	if err := s.db.Where("key IN ?", keys).Find(&records).Error; err != nil {
		return status, fmt.Errorf("load sync status: %w", err)
	}
	for _, record := range records {
		switch record.Key {
		case db.SettingKeyLocketLastSyncAt:
			if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(record.Value)); err == nil {
				status.LastSyncAt = parsed
			}
		case db.SettingKeyLocketLastSyncCount:
			if parsed, err := strconv.Atoi(strings.TrimSpace(record.Value)); err == nil {
				status.LastSyncCount = parsed
			}
		}
	}
	return status, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
