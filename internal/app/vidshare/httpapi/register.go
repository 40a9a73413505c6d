package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/app/vidshare/repo"
	"vidshare.local/internal/app/vidshare/stats"
	"vidshare.local/internal/app/vidshare/uploads"
	"vidshare.local/internal/platform/auth"
	"vidshare.local/internal/platform/httpmiddleware"
	"vidshare.local/internal/platform/ratelimit"
)

// RegisterAPIRoutes mounts the JSON API under the given group (/api/v1).
// Handlers only translate HTTP to and from the domain layer.
func RegisterAPIRoutes(
	api *gin.RouterGroup,
	svc *vidshare.Service,
	videosRepo *repo.VideosRepo,
	usersRepo *repo.UsersRepo,
	signer *uploads.Signer,
	ts auth.TokenService,
	limiter *ratelimit.Limiter,
) {
	api.Use(httpmiddleware.AuthOptional(ts))

	api.POST("/register", httpmiddleware.RateLimit(limiter, "register", 3, time.Minute), NewRegisterHandler(usersRepo))
	api.POST("/login", httpmiddleware.RateLimit(limiter, "login", 5, time.Minute), NewLoginHandler(usersRepo, ts))

	authed := api.Group("")
	authed.Use(httpmiddleware.AuthRequired(ts))
	authed.GET("/users/me", NewUserMeHandler())
	// Requires auth so anonymous callers cannot enumerate accounts.
	authed.POST("/users/check-email", NewCheckEmailHandler(usersRepo))

	authed.GET("/videos/upload-auth", NewUploadAuthHandler(signer))
	authed.POST("/videos", NewSaveVideoHandler(videosRepo))
	authed.GET("/videos", NewListVideosHandler(videosRepo))

	authed.POST("/links", httpmiddleware.RateLimit(limiter, "create", 10, time.Minute), NewCreateLinkHandler(svc))
	authed.GET("/links", NewListLinksHandler(svc))
}

// RegisterPublicRoutes mounts the share entry point on the engine root.
// Share URLs are typed into browsers, so they stay out of /api/v1; the
// optional auth lets signed-in viewers present their verified email.
func RegisterPublicRoutes(
	engine *gin.Engine,
	svc *vidshare.Service,
	collector stats.Collector,
	ts auth.TokenService,
	limiter *ratelimit.Limiter,
) {
	engine.GET("/share/:code",
		httpmiddleware.RateLimit(limiter, "resolve", 100, time.Minute),
		httpmiddleware.AuthOptional(ts),
		NewResolveHandler(svc, collector),
	)
}
