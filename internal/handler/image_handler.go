package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/momentlog/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type imagePatchPayload struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	ThumbURL    *string    `json:"thumb_url"`
	VideoURL    *string    `json:"video_url"`
	Width       *int       `json:"width"`
	Height      *int       `json:"height"`
	SortOrder   *int       `json:"sort_order"`
	CapturedAt  *time.Time `json:"captured_at"`
}

func (p imagePatchPayload) toPatch() service.ImagePatch {
	return service.ImagePatch{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		ThumbURL:    p.ThumbURL,
		VideoURL:    p.VideoURL,
		Width:       p.Width,
		Height:      p.Height,
		SortOrder:   p.SortOrder,
		CapturedAt:  p.CapturedAt,
	}
}

// ListImages returns the gallery. With ?slug= it returns the single matching
// record instead, the lookup the public frontend uses for detail views.
func (a *API) ListImages(c *gin.Context) {
	if slug := strings.TrimSpace(c.Query("slug")); slug != "" {
		a.getImageBySlug(c, slug)
		return
	}

	filter := service.ImageFilter{
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 0),
	}

	result, err := a.images.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load images")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

func (a *API) getImageBySlug(c *gin.Context, slug string) {
	item, err := a.images.GetBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageNotFound):
			respondError(c, http.StatusNotFound, "image not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to load image")
		}
		return
	}

	htmlContent, err := renderMarkdown(item.Description)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to render description")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":             item,
		"description_html": htmlContent,
	})
}

// UpdateImage applies a partial update. Absent JSON fields stay untouched.
func (a *API) UpdateImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid image id")
		return
	}

	var payload imagePatchPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	item, err := a.images.Update(id, payload.toPatch())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageNotFound):
			respondError(c, http.StatusNotFound, "image not found")
		case errors.Is(err, service.ErrImageURLMissing):
			respondError(c, http.StatusBadRequest, "image url cannot be empty")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update image")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "image updated", "item": item})
}

// DeleteImage removes a record and its local files. Deleting the same id
// again reports not found.
func (a *API) DeleteImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid image id")
		return
	}

	record, err := a.images.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageNotFound):
			respondError(c, http.StatusNotFound, "image not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to delete image")
		}
		return
	}

	// Local files go best-effort; the record is already gone.
	a.uploads.RemoveFiles(record)

	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

type reorderPayload struct {
	IDs []uint `json:"ids"`
}

// ReorderImages rewrites the sort order following the given id list.
func (a *API) ReorderImages(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	if err := a.images.Reorder(payload.IDs); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderInvalid):
			respondError(c, http.StatusBadRequest, "invalid id list")
		case errors.Is(err, service.ErrImageNotFound):
			respondError(c, http.StatusNotFound, "image not found")
		default:
			respondError(c, http.StatusInternalServerError, "failed to reorder images")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
