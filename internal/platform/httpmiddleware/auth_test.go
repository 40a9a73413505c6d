package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/platform/auth"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ts, err := auth.NewHS256Service("secret", "issuer", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}

	whoami := func(c *gin.Context) {
		id, ok := auth.GetIdentity(c.Request.Context())
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "email": id.Email})
	}

	r := gin.New()
	r.GET("/required", AuthRequired(ts), whoami)
	r.GET("/optional", AuthOptional(ts), whoami)
	r.GET("/admin", AuthRequired(ts), RequireRole("admin"), whoami)
	return r, ts
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	r, ts := newAuthTestRouter(t)

	if rec := get(r, "/required", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: %d", rec.Code)
	}
	if rec := get(r, "/required", "Basic abc"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong scheme: %d", rec.Code)
	}
	if rec := get(r, "/required", "Bearer not.a.token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", rec.Code)
	}

	token, err := ts.Sign(auth.Claims{UserID: "7", Email: "a@example.com", EmailVerified: true, Role: "user"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if rec := get(r, "/required", "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthOptional(t *testing.T) {
	r, ts := newAuthTestRouter(t)

	rec := get(r, "/optional", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous: %d", rec.Code)
	}

	// Invalid tokens fall through to anonymous instead of failing.
	rec = get(r, "/optional", "Bearer junk")
	if rec.Code != http.StatusOK {
		t.Fatalf("bad token: %d", rec.Code)
	}

	token, _ := ts.Sign(auth.Claims{UserID: "7", Role: "user"})
	rec = get(r, "/optional", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	r, ts := newAuthTestRouter(t)

	user, _ := ts.Sign(auth.Claims{UserID: "7", Role: "user"})
	if rec := get(r, "/admin", "Bearer "+user); rec.Code != http.StatusForbidden {
		t.Fatalf("user role: %d", rec.Code)
	}

	admin, _ := ts.Sign(auth.Claims{UserID: "1", Role: "admin"})
	if rec := get(r, "/admin", "Bearer "+admin); rec.Code != http.StatusOK {
		t.Fatalf("admin role: %d", rec.Code)
	}
}

func TestClientIPTrust(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	if ip := ClientIP(req); ip != "203.0.113.5" {
		t.Fatalf("untrusted remote got %q", ip)
	}

	req.RemoteAddr = "10.0.0.1:1234"
	if ip := ClientIP(req); ip != "198.51.100.9" {
		t.Fatalf("trusted proxy got %q", ip)
	}

	req.Header.Set("CF-Connecting-IP", "192.0.2.33")
	if ip := ClientIP(req); ip != "192.0.2.33" {
		t.Fatalf("cloudflare header got %q", ip)
	}
}
