package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/app/vidshare/repo"
	"vidshare.local/internal/platform/auth"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewRegisterHandler(r *repo.UsersRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		userID, err := r.Register(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, repo.ErrUserAlreadyExists):
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, repo.ErrInvalidUsername),
				errors.Is(err, repo.ErrInvalidPassword),
				errors.Is(err, vidshare.ErrInvalidEmail):
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				slog.Error("register failed", "err", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}
		c.JSON(http.StatusCreated, RegisterResponse{
			ID:       userID,
			Username: req.Username,
			Email:    req.Email,
		})
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewLoginHandler(usersRepo *repo.UsersRepo, ts auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		dbctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()
		user, err := usersRepo.FindByUsername(dbctx, req.Username)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			slog.Error("find user failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		// Emails stored here went through registration, so the token marks
		// them verified and access-list checks can rely on it.
		token, err := ts.Sign(auth.Claims{
			UserID:        strconv.FormatInt(user.ID, 10),
			Name:          user.Username,
			Email:         user.Email,
			EmailVerified: true,
			Role:          user.Role,
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "sign failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func NewUserMeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "missing identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id": id.UserID,
			"name":    id.Name,
			"email":   id.Email,
			"role":    id.Role,
		})
	}
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

// NewCheckEmailHandler lets the share dialog verify an invitee has an
// account before the owner adds them to an access list.
func NewCheckEmailHandler(r *repo.UsersRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := vidshare.ValidateEmail(req.Email); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		exists, err := r.EmailExists(c.Request.Context(), req.Email)
		if err != nil {
			slog.Error("check email failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}
