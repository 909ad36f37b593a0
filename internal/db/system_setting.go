package db

import "gorm.io/gorm"

// SystemSetting stores server-side key/value state, such as the Locket
// credential obtained through the admin login endpoint.
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName keeps the table name stable across gorm naming changes.
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyLocketIDToken is the Firebase id token used as the Locket bearer credential.
	SettingKeyLocketIDToken = "locket_id_token"
	// SettingKeyLocketRefreshToken is the Firebase refresh token.
	SettingKeyLocketRefreshToken = "locket_refresh_token"
	// SettingKeyLocketUserID is the external Locket user id (Firebase localId).
	SettingKeyLocketUserID = "locket_user_id"
	// SettingKeyLocketTokenExpiry is the id token expiry, RFC 3339.
	SettingKeyLocketTokenExpiry = "locket_token_expiry"
	// SettingKeyLocketLastSyncAt is the time of the last successful sync, RFC 3339.
	SettingKeyLocketLastSyncAt = "locket_last_sync_at"
	// SettingKeyLocketLastSyncCount is the number of records the last sync inserted.
	SettingKeyLocketLastSyncCount = "locket_last_sync_count"
)
