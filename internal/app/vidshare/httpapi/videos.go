package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/app/vidshare/repo"
	"vidshare.local/internal/app/vidshare/uploads"
)

type SaveVideoRequest struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// NewSaveVideoHandler records upload metadata after the browser has pushed
// the file to object storage.
func NewSaveVideoHandler(r *repo.VideosRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.URL == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}

		owner, ok := mustGetOwner(c)
		if !ok {
			return
		}

		video, err := r.Save(c.Request.Context(), repo.NewVideo{
			OwnerID:      owner.ID,
			FileName:     req.Name,
			FileURL:      req.URL,
			FileSize:     req.Size,
			ThumbnailURL: req.ThumbnailURL,
		})
		if err != nil {
			slog.Error("save video failed", "err", err, "owner_id", owner.ID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, video)
	}
}

func NewListVideosHandler(r *repo.VideosRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := mustGetOwner(c)
		if !ok {
			return
		}
		videos, err := r.ListByOwner(c.Request.Context(), owner.ID)
		if err != nil {
			slog.Error("list videos failed", "err", err, "owner_id", owner.ID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if videos == nil {
			videos = []vidshare.Video{}
		}
		c.JSON(http.StatusOK, videos)
	}
}

// NewUploadAuthHandler hands the client a short-lived signature for a direct
// browser upload.
func NewUploadAuthHandler(signer *uploads.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
			return
		}
		if _, ok := mustGetOwner(c); !ok {
			return
		}
		c.JSON(http.StatusOK, signer.Sign(time.Now()))
	}
}
