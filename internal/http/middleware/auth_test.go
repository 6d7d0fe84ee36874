// README: Tests for bearer-token auth middleware.
package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"motorpool/internal/auth"
	"motorpool/internal/http/middleware"
	"motorpool/internal/modules/identity"
)

// stubVerifier is a test double for middleware.TokenVerifier.
type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s *stubVerifier) VerifyToken(string) (*auth.Claims, error) {
	return s.claims, s.err
}

func newTestRouter(verifier middleware.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		actor := middleware.Actor(c)
		c.JSON(http.StatusOK, gin.H{"uid": actor.UserID, "role": actor.Role})
	})
	r.GET("/admin", middleware.RequireRoles(identity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &auth.Claims{UserID: "user1"}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthInvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &auth.Claims{UserID: "user1"}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("boom")})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthAttachesActor(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &auth.Claims{
		UserID: "user1", Role: "supervisor", DepartmentID: "dept1",
	}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "user1") || !strings.Contains(body, "supervisor") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestRequireRolesBlocksEmployee(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &auth.Claims{UserID: "user1", Role: "employee"}})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	r := newTestRouter(&stubVerifier{claims: &auth.Claims{UserID: "user1", Role: "admin"}})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}
