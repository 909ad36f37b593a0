package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/momentlog/internal/db"
	"github.com/momentlog/internal/locket"
)

// ErrLoginIncomplete means the login request lacked an email or password.
var ErrLoginIncomplete = errors.New("email and password are required")

// momentAPI is the slice of the Locket client the sync service needs.
type momentAPI interface {
	Login(ctx context.Context, email, password string) (locket.Credentials, error)
	FetchMoments(ctx context.Context, idToken, userID string) ([]locket.Moment, error)
}

// SyncService pulls moments from Locket and folds them into the gallery.
type SyncService struct {
	client momentAPI
	creds  *CredentialService
	images *ImageService
}

// NewSyncService constructs a SyncService.
func NewSyncService(client momentAPI, creds *CredentialService, images *ImageService) *SyncService {
	return &SyncService{client: client, creds: creds, images: images}
}

// SyncResult reports what a sync or reset run did.
type SyncResult struct {
	Fetched int   `json:"fetched"`
	Added   int   `json:"added"`
	Total   int64 `json:"total"`
}

// Login exchanges the account credentials for tokens and stores them.
func (s *SyncService) Login(ctx context.Context, email, password string) (locket.Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return locket.Credentials{}, ErrLoginIncomplete
	}

	creds, err := s.client.Login(ctx, email, password)
	if err != nil {
		return locket.Credentials{}, err
	}
	if err := s.creds.Save(creds); err != nil {
		return locket.Credentials{}, err
	}
	return creds, nil
}

// Moments fetches the account's recent moments without touching the gallery.
func (s *SyncService) Moments(ctx context.Context) ([]locket.Moment, error) {
	creds, err := s.creds.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.FetchMoments(ctx, creds.IDToken, creds.UserID)
}

// Sync fetches moments and inserts the ones not in the gallery yet. Moments
// are matched to existing records by slug, so a rerun adds nothing.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	moments, err := s.fetchValidated(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.images.ExistingSlugs()
	if err != nil {
		return nil, err
	}

	var records []db.GalleryImage
	for _, moment := range moments {
		record := momentRecord(moment)
		if _, ok := existing[record.Slug]; ok {
			continue
		}
		existing[record.Slug] = struct{}{}
		records = append(records, record)
	}

	added, err := s.images.CreateBatch(records)
	if err != nil {
		return nil, err
	}
	return s.finish(len(moments), added)
}

// Reset rebuilds the gallery from scratch so it mirrors the Locket feed.
func (s *SyncService) Reset(ctx context.Context) (*SyncResult, error) {
	moments, err := s.fetchValidated(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(moments))
	var records []db.GalleryImage
	for _, moment := range moments {
		record := momentRecord(moment)
		if _, ok := seen[record.Slug]; ok {
			continue
		}
		seen[record.Slug] = struct{}{}
		records = append(records, record)
	}

	added, err := s.images.ReplaceAll(records)
	if err != nil {
		return nil, err
	}
	return s.finish(len(moments), added)
}

func (s *SyncService) fetchValidated(ctx context.Context) ([]locket.Moment, error) {
	moments, err := s.Moments(ctx)
	if err != nil {
		return nil, err
	}
	for _, moment := range moments {
		if err := moment.Validate(); err != nil {
			return nil, err
		}
	}
	return moments, nil
}

func (s *SyncService) finish(fetched, added int) (*SyncResult, error) {
	total, err := s.images.Count()
	if err != nil {
		return nil, err
	}
	if err := s.creds.RecordSyncResult(time.Now(), added); err != nil {
		return nil, err
	}
	return &SyncResult{Fetched: fetched, Added: added, Total: total}, nil
}

// momentRecord maps a Locket moment onto a gallery record.
func momentRecord(m locket.Moment) db.GalleryImage {
	record := db.GalleryImage{
		Slug:       slugFromMomentID(m.CanonicalUID),
		Title:      m.CaptionText(),
		ImageURL:   m.ThumbnailURL,
		VideoURL:   m.VideoURL,
		Source:     db.SourceLocket,
		CapturedAt: m.Date.Time(),
	}
	if overlay, ok := m.CaptionOverlay(); ok {
		record.Overlay = overlayFields(overlay)
	}
	return record
}

func overlayFields(o locket.Overlay) db.MomentOverlay {
	out := db.MomentOverlay{
		Text:      o.Data.Text,
		TextColor: o.Data.TextColor,
		Icon:      o.Data.Icon.Data,
	}
	if colors := o.Data.Background.Colors; len(colors) > 0 {
		out.BackgroundStart = colors[0]
		out.BackgroundEnd = colors[len(colors)-1]
	}
	return out
}
