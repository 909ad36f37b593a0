package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/momentlog/internal/service"
)

// UploadImage handles a multipart image upload and creates its gallery record.
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no image uploaded")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	sortOrder := parsePositiveInt(c.PostForm("sort_order"), 0)

	item, err := a.uploads.SaveImage(file, c.PostForm("title"), c.PostForm("description"), sortOrder)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTypeInvalid):
			respondError(c, http.StatusBadRequest, "unsupported image type")
		case errors.Is(err, service.ErrUploadUndecodable):
			respondError(c, http.StatusBadRequest, "file is not a valid image")
		default:
			respondError(c, http.StatusInternalServerError, "failed to save upload")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "image uploaded", "item": item})
}
