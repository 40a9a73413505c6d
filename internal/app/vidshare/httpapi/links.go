package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/app/vidshare/stats"
	"vidshare.local/internal/platform/httpmiddleware"
	"vidshare.local/internal/platform/metrics"
)

type CreateLinkRequest struct {
	VideoID      int64    `json:"videoId"`
	IsPublic     bool     `json:"isPublic"`
	AccessEmails []string `json:"accessEmails"`
	ExpiryDate   string   `json:"expiryDate"`
	Message      string   `json:"message,omitempty"`
}

func NewCreateLinkHandler(svc *vidshare.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.VideoID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "videoId is required"})
			return
		}

		expiresAt, err := vidshare.ParseExpiry(req.ExpiryDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid expiryDate"})
			return
		}
		if !req.IsPublic {
			for _, email := range req.AccessEmails {
				if err := vidshare.ValidateEmail(email); err != nil {
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid email in accessEmails"})
					return
				}
			}
		}

		owner, ok := mustGetOwner(c)
		if !ok {
			return
		}

		created, err := svc.CreateLink(c.Request.Context(), owner, vidshare.CreateLinkInput{
			VideoID:      req.VideoID,
			Public:       req.IsPublic,
			AccessEmails: req.AccessEmails,
			ExpiresAt:    expiresAt,
		})
		if err != nil {
			if errors.Is(err, vidshare.ErrVideoNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			slog.Error("create link failed", "err", err, "video_id", req.VideoID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, created)
	}
}

func NewListLinksHandler(svc *vidshare.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := mustGetOwner(c)
		if !ok {
			return
		}
		links, err := svc.ListLinks(c.Request.Context(), owner.ID)
		if err != nil {
			slog.Error("list links failed", "err", err, "owner_id", owner.ID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if links == nil {
			links = []vidshare.OwnedLink{}
		}
		c.JSON(http.StatusOK, links)
	}
}

// NewResolveHandler serves the public share endpoint. The requester may be
// anonymous; a verified email is only available from a valid bearer token.
func NewResolveHandler(svc *vidshare.Service, collector stats.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		view, err := svc.ResolveLink(c.Request.Context(), code, requesterEmail(c))
		if err != nil {
			var de *vidshare.DecisionError
			switch {
			case errors.Is(err, vidshare.ErrLinkNotFound):
				metrics.LinkResolutionsTotal.WithLabelValues("not_found").Inc()
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "shareable link not found"})
			case errors.As(err, &de):
				metrics.LinkResolutionsTotal.WithLabelValues(de.Decision.String()).Inc()
				if de.Decision == vidshare.DecisionExpired {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": de.Error()})
					return
				}
				// requiresAuth is only true when signing in could change the
				// outcome; a signed-in non-member must not be bounced back
				// through sign-in.
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":        de.Error(),
					"requiresAuth": de.Decision == vidshare.DecisionNeedAuth,
					"videoId":      de.VideoID,
				})
			default:
				slog.Error("resolve link failed", "err", err, "code", code)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		metrics.LinkResolutionsTotal.WithLabelValues("allow").Inc()

		if collector != nil {
			collector.Collect(stats.ViewEvent{
				Code:      code,
				ViewedAt:  time.Now(),
				IP:        httpmiddleware.ClientIP(c.Request),
				UserAgent: c.Request.UserAgent(),
				Referer:   c.Request.Referer(),
			})
		}

		c.JSON(http.StatusOK, view)
	}
}
