package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/momentlog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrImageNotFound   = errors.New("gallery image not found")
	ErrImageURLMissing = errors.New("gallery image url is required")
	ErrSlugMissing     = errors.New("gallery image slug is required")
	ErrSlugTaken       = errors.New("gallery image slug already exists")
	ErrSourceInvalid   = errors.New("gallery image source is invalid")
	ErrOrderInvalid    = errors.New("gallery order list is invalid")
)

// ImageService handles gallery record CRUD against the sqlite store.
type ImageService struct {
	db *gorm.DB
}

// NewImageService creates an ImageService instance.
func NewImageService(gdb *gorm.DB) *ImageService {
	return &ImageService{db: gdb}
}

// ImageFilter describes optional pagination for listing. A zero PerPage
// returns the whole collection.
type ImageFilter struct {
	Page    int
	PerPage int
}

// ImageListResult aggregates listing results.
type ImageListResult struct {
	Items      []db.GalleryImage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ImageInput represents the fields accepted when creating a gallery record.
type ImageInput struct {
	Slug        string
	Title       string
	Description string
	ImageURL    string
	ThumbURL    string
	VideoURL    string
	Width       int
	Height      int
	FileSize    int64
	SortOrder   int
	Source      string
	CapturedAt  time.Time
	Overlay     db.MomentOverlay
}

// ImagePatch carries a partial update. Nil fields stay untouched; the slug is
// immutable after creation.
type ImagePatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	ThumbURL    *string
	VideoURL    *string
	Width       *int
	Height      *int
	SortOrder   *int
	CapturedAt  *time.Time
}

// List returns gallery records ordered by sort order, newest id first.
func (s *ImageService) List(filter ImageFilter) (ImageListResult, error) {
	result := ImageListResult{Page: normalizePage(filter.Page), PerPage: filter.PerPage}

	query := s.db.Model(&db.GalleryImage{})
	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	ordered := query.Order("sort_order desc").Order("id desc")
	if result.PerPage > 0 {
		result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
		ordered = ordered.Limit(result.PerPage).Offset((result.Page - 1) * result.PerPage)
	} else {
		result.TotalPages = 1
	}

	if err := ordered.Find(&result.Items).Error; err != nil {
		return result, err
	}
	return result, nil
}

// ListAll returns every record in display order.
func (s *ImageService) ListAll() ([]db.GalleryImage, error) {
	result, err := s.List(ImageFilter{})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Get fetches a record by id.
func (s *ImageService) Get(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetBySlug fetches a record by its canonical slug.
func (s *ImageService) GetBySlug(slug string) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new gallery record.
func (s *ImageService) Create(input ImageInput) (*db.GalleryImage, error) {
	item, err := recordFromInput(input)
	if err != nil {
		return nil, err
	}

	taken, err := s.slugExists(item.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a partial patch to an existing record, preserving its id and
// every field the patch leaves nil.
func (s *ImageService) Update(id uint, patch ImagePatch) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}

	if patch.Title != nil {
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		item.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ImageURL != nil {
		url := strings.TrimSpace(*patch.ImageURL)
		if url == "" {
			return nil, ErrImageURLMissing
		}
		item.ImageURL = url
	}
	if patch.ThumbURL != nil {
		item.ThumbURL = strings.TrimSpace(*patch.ThumbURL)
	}
	if patch.VideoURL != nil {
		item.VideoURL = strings.TrimSpace(*patch.VideoURL)
	}
	if patch.Width != nil {
		item.Width = *patch.Width
	}
	if patch.Height != nil {
		item.Height = *patch.Height
	}
	if patch.SortOrder != nil {
		item.SortOrder = *patch.SortOrder
	}
	if patch.CapturedAt != nil {
		item.CapturedAt = patch.CapturedAt.UTC()
	}

	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a record by id and returns it so callers can clean up the
// underlying files. A second delete reports ErrImageNotFound.
func (s *ImageService) Delete(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if err := s.db.Delete(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Reorder assigns sort order following the given id order, first id on top.
func (s *ImageService) Reorder(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return ErrOrderInvalid
		}
		if _, ok := seen[id]; ok {
			return ErrOrderInvalid
		}
		seen[id] = struct{}{}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(&db.GalleryImage{}).Where("id = ?", id).Update("sort_order", len(ids)-idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrImageNotFound
			}
		}
		return nil
	})
}

// ExistingSlugs returns the set of slugs currently in the collection.
func (s *ImageService) ExistingSlugs() (map[string]struct{}, error) {
	var slugs []string
	if err := s.db.Model(&db.GalleryImage{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		set[slug] = struct{}{}
	}
	return set, nil
}

// UniqueSlug returns base unchanged when free, otherwise the first free
// numbered variant (base-2, base-3, ...).
func (s *ImageService) UniqueSlug(base string) (string, error) {
	taken, err := s.slugExists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := s.slugExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// CreateBatch inserts the given records in one transaction and returns how
// many were written.
func (s *ImageService) CreateBatch(records []db.GalleryImage) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ReplaceAll discards the whole collection and inserts the given records in
// one transaction. Used by the reset operation.
func (s *ImageService) ReplaceAll(records []db.GalleryImage) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&db.GalleryImage{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Count returns the number of records in the collection.
func (s *ImageService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.GalleryImage{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ImageService) slugExists(slug string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.GalleryImage{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordFromInput(input ImageInput) (*db.GalleryImage, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return nil, ErrSlugMissing
	}
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		return nil, ErrImageURLMissing
	}

	source := strings.ToLower(strings.TrimSpace(input.Source))
	if source == "" {
		source = db.SourceUpload
	}
	if source != db.SourceUpload && source != db.SourceLocket {
		return nil, ErrSourceInvalid
	}

	capturedAt := input.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	return &db.GalleryImage{
		Slug:        slug,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		ImageURL:    imageURL,
		ThumbURL:    strings.TrimSpace(input.ThumbURL),
		VideoURL:    strings.TrimSpace(input.VideoURL),
		Width:       input.Width,
		Height:      input.Height,
		FileSize:    input.FileSize,
		SortOrder:   input.SortOrder,
		Source:      source,
		CapturedAt:  capturedAt.UTC(),
		Overlay:     input.Overlay,
	}, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
