package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/platform/auth"
)

// mustGetOwner extracts the authenticated caller; on failure the error
// response is already written and ok is false.
func mustGetOwner(c *gin.Context) (vidshare.Owner, bool) {
	identity, ok := auth.GetIdentity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return vidshare.Owner{}, false
	}
	userID, err := strconv.ParseInt(identity.UserID, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid user id"})
		return vidshare.Owner{}, false
	}
	return vidshare.Owner{ID: userID, Name: identity.Name}, true
}

// requesterEmail returns the caller's verified email, or "" for anonymous
// callers and callers without a verified address.
func requesterEmail(c *gin.Context) string {
	identity, ok := auth.GetIdentity(c.Request.Context())
	if !ok {
		return ""
	}
	email, ok := identity.VerifiedEmail()
	if !ok {
		return ""
	}
	return email
}
