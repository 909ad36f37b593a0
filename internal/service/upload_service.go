package service

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/momentlog/internal/db"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	// ErrUploadTypeInvalid means the file extension is not an accepted image type.
	ErrUploadTypeInvalid = errors.New("unsupported image type")
	// ErrUploadUndecodable means the content could not be decoded as an image.
	ErrUploadUndecodable = errors.New("file is not a decodable image")
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService stores uploaded originals on disk, derives thumbnails and
// creates the matching gallery records.
type UploadService struct {
	images     *ImageService
	dir        string
	urlPath    string
	thumbWidth int
}

// NewUploadService constructs an UploadService writing into dir and serving
// files under urlPath.
func NewUploadService(images *ImageService, dir, urlPath string, thumbWidth int) *UploadService {
	return &UploadService{
		images:     images,
		dir:        dir,
		urlPath:    strings.TrimSuffix(urlPath, "/"),
		thumbWidth: thumbWidth,
	}
}

// SaveImage persists an uploaded image and creates its gallery record. The
// saved files are removed again if the record cannot be inserted.
func (s *UploadService) SaveImage(file *multipart.FileHeader, title, description string, sortOrder int) (*db.GalleryImage, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return nil, ErrUploadTypeInvalid
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, ErrUploadUndecodable
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	originalPath := filepath.Join(s.dir, name)
	if err := writeFile(originalPath, src); err != nil {
		return nil, err
	}

	cleanup := []string{originalPath}
	removeAll := func() {
		for _, p := range cleanup {
			os.Remove(p)
		}
	}

	// Small originals serve as their own thumbnail.
	thumbURL := s.urlPath + "/" + name
	if cfg.Width > s.thumbWidth {
		thumbName := strings.TrimSuffix(name, ext) + "_thumb.jpg"
		thumbPath := filepath.Join(s.dir, thumbName)
		if err := s.writeThumbnail(originalPath, thumbPath); err != nil {
			removeAll()
			return nil, err
		}
		cleanup = append(cleanup, thumbPath)
		thumbURL = s.urlPath + "/" + thumbName
	}

	slug, err := s.images.UniqueSlug(slugFromFilename(file.Filename))
	if err != nil {
		removeAll()
		return nil, err
	}

	record, err := s.images.Create(ImageInput{
		Slug:        slug,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		ImageURL:    s.urlPath + "/" + name,
		ThumbURL:    thumbURL,
		Width:       cfg.Width,
		Height:      cfg.Height,
		FileSize:    file.Size,
		SortOrder:   sortOrder,
		Source:      db.SourceUpload,
		CapturedAt:  time.Now(),
	})
	if err != nil {
		removeAll()
		return nil, err
	}
	return record, nil
}

// RemoveFiles deletes the local files behind a record, ignoring failures and
// URLs that do not point into the upload directory.
func (s *UploadService) RemoveFiles(record *db.GalleryImage) {
	if record == nil {
		return
	}
	for _, url := range []string{record.ImageURL, record.ThumbURL} {
		if p, ok := s.localPath(url); ok {
			os.Remove(p)
		}
	}
}

func (s *UploadService) localPath(url string) (string, bool) {
	prefix := s.urlPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(url, prefix)
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	return filepath.Join(s.dir, filepath.FromSlash(rel)), true
}

func (s *UploadService) writeThumbnail(originalPath, thumbPath string) error {
	img, err := imaging.Open(originalPath)
	if err != nil {
		return fmt.Errorf("decode original: %w", err)
	}
	thumb := imaging.Resize(img, s.thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}

func writeFile(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		os.Remove(path)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
