package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momentlog/internal/handler"
)

// SetupRouter configures the gin engine and routes.
func SetupRouter(api *handler.API, adminToken, uploadDir, uploadURL string) *gin.Engine {
	r := gin.Default()

	// Uploaded originals and thumbnails.
	r.Static(uploadURL, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Public read API.
	r.GET("/api/images", api.ListImages)

	// Admin write API.
	admin := r.Group("/api/admin")
	admin.Use(handler.RequireAdmin(adminToken))
	{
		admin.POST("/images", api.UploadImage)
		admin.PUT("/images/order", api.ReorderImages)
		admin.PUT("/images/:id", api.UpdateImage)
		admin.DELETE("/images/:id", api.DeleteImage)
	}

	// Locket integration, admin gated.
	locket := r.Group("/api/locket")
	locket.Use(handler.RequireAdmin(adminToken))
	{
		locket.POST("/login", api.LocketLogin)
		locket.GET("/moments", api.LocketMoments)
		locket.POST("/sync", api.LocketSync)
		locket.POST("/reset", api.LocketReset)
		locket.GET("/status", api.LocketStatus)
	}

	return r
}
