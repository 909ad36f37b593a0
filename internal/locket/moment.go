package locket

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedMoment marks a moment payload missing a required field. The
// listing call fails as a whole rather than silently defaulting fields.
var ErrMalformedMoment = errors.New("malformed moment payload")

// Moment is a single capture from the Locket moment listing.
type Moment struct {
	CanonicalUID string     `json:"canonical_uid"`
	User         string     `json:"user"`
	ThumbnailURL string     `json:"thumbnail_url"`
	VideoURL     string     `json:"video_url"`
	Caption      string     `json:"caption"`
	MD5          string     `json:"md5"`
	Date         MomentDate `json:"date"`
	Overlays     []Overlay  `json:"overlays"`
}

// MomentDate mirrors the Firestore timestamp encoding Locket uses.
type MomentDate struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

// Time converts the Firestore timestamp to UTC.
func (d MomentDate) Time() time.Time {
	return time.Unix(d.Seconds, d.Nanoseconds).UTC()
}

// Overlay is one overlay entry attached to a moment. Captions arrive as an
// overlay of type "caption" rather than in the top-level caption field on
// newer app versions.
type Overlay struct {
	OverlayID   string      `json:"overlay_id"`
	OverlayType string      `json:"overlay_type"`
	AltText     string      `json:"alt_text"`
	Data        OverlayData `json:"data"`
}

// OverlayData carries the rendered text and styling of an overlay.
type OverlayData struct {
	Text       string            `json:"text"`
	TextColor  string            `json:"text_color"`
	Type       string            `json:"type"`
	MaxLines   int               `json:"max_lines"`
	Background OverlayBackground `json:"background"`
	Icon       OverlayIcon       `json:"icon"`
}

// OverlayBackground is the gradient behind the overlay text.
type OverlayBackground struct {
	MaterialBlur string   `json:"material_blur"`
	Colors       []string `json:"colors"`
}

// OverlayIcon is an optional emoji or asset shown next to the overlay text.
type OverlayIcon struct {
	Type   string `json:"type"`
	Data   string `json:"data"`
	Source string `json:"source"`
}

// Validate rejects moments that cannot be turned into a gallery record.
func (m Moment) Validate() error {
	if strings.TrimSpace(m.CanonicalUID) == "" {
		return fmt.Errorf("%w: missing canonical_uid", ErrMalformedMoment)
	}
	if strings.TrimSpace(m.ThumbnailURL) == "" {
		return fmt.Errorf("%w: moment %s has no thumbnail_url", ErrMalformedMoment, m.CanonicalUID)
	}
	if m.Date.Seconds <= 0 {
		return fmt.Errorf("%w: moment %s has no capture date", ErrMalformedMoment, m.CanonicalUID)
	}
	return nil
}

// IsVideo reports whether the moment is a video capture.
func (m Moment) IsVideo() bool {
	return strings.TrimSpace(m.VideoURL) != ""
}

// CaptionText returns the display caption, preferring the top-level field and
// falling back to the first caption overlay.
func (m Moment) CaptionText() string {
	if caption := strings.TrimSpace(m.Caption); caption != "" {
		return caption
	}
	if overlay, ok := m.CaptionOverlay(); ok {
		if text := strings.TrimSpace(overlay.Data.Text); text != "" {
			return text
		}
		return strings.TrimSpace(overlay.AltText)
	}
	return ""
}

// CaptionOverlay returns the first overlay of type "caption".
func (m Moment) CaptionOverlay() (Overlay, bool) {
	for _, overlay := range m.Overlays {
		if overlay.OverlayType == "caption" {
			return overlay, true
		}
	}
	return Overlay{}, false
}
