package db

import "time"

const (
	// SourceUpload marks records created through the admin upload endpoint.
	SourceUpload = "upload"
	// SourceLocket marks records synced from the Locket moment listing.
	SourceLocket = "locket"
)

// GalleryImage is a single photo or video record in the gallery collection.
// Rows are deleted for real (no soft delete) so a removed slug can be
// recreated by a later upload or sync.
type GalleryImage struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Slug        string        `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Title       string        `gorm:"size:255" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	ImageURL    string        `gorm:"size:1024;not null" json:"image_url"`
	ThumbURL    string        `gorm:"size:1024" json:"thumb_url,omitempty"`
	VideoURL    string        `gorm:"size:1024" json:"video_url,omitempty"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	FileSize    int64         `json:"file_size,omitempty"`
	SortOrder   int           `gorm:"default:0;index" json:"sort_order"`
	Source      string        `gorm:"size:20;not null;default:upload" json:"source"`
	CapturedAt  time.Time     `json:"captured_at"`
	Overlay     MomentOverlay `gorm:"embedded;embeddedPrefix:overlay_" json:"overlay"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MomentOverlay keeps the caption overlay Locket attaches to a moment.
// Flat columns instead of a serialized blob so the schema stays explicit.
type MomentOverlay struct {
	Text            string `gorm:"size:255" json:"text,omitempty"`
	TextColor       string `gorm:"size:16" json:"text_color,omitempty"`
	BackgroundStart string `gorm:"size:16" json:"background_start,omitempty"`
	BackgroundEnd   string `gorm:"size:16" json:"background_end,omitempty"`
	Icon            string `gorm:"size:64" json:"icon,omitempty"`
}

// Empty reports whether the overlay carries no data at all.
func (o MomentOverlay) Empty() bool {
	return o.Text == "" && o.TextColor == "" && o.BackgroundStart == "" && o.BackgroundEnd == "" && o.Icon == ""
}
