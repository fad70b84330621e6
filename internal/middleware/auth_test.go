package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asfi50/jnucsu-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

func moderatorRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	})
	r.Use(RequireModerator())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireModerator_Allowed(t *testing.T) {
	for _, role := range []string{"moderator", "admin"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		moderatorRouter(role).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("role %s: expected 200, got %d", role, w.Code)
		}
	}
}

func TestRequireModerator_Denied(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	moderatorRouter("member").ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestJWTAuthStoresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := jwt.NewManager("test-secret", time.Hour)
	token, err := manager.GenerateToken("student-1", "asfi", "member")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := gin.New()
	r.Use(JWTAuth(manager))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := jwt.NewManager("test-secret", time.Hour)

	r := gin.New()
	r.Use(JWTAuth(manager))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
