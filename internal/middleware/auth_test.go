package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret, zap.NewNop()), func(c *gin.Context) {
		id, _ := c.Get("subscriberID")
		seen, _ = id.(string)
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})
	return r, &seen
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r, seen := authRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "chat-42",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chat-42", *seen)
}

func TestAuthMiddlewareNumericSubject(t *testing.T) {
	r, seen := authRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", *seen)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r, _ := authRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	r, _ := authRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	r, _ := authRouter()
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "chat-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	r, _ := authRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "chat-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	r, _ := authRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "chat-42",
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ticks", ServiceAuthMiddleware("feed-key", zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})

	cases := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "feed-key", http.StatusOK},
		{"wrong key", "other", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/ticks", nil)
			if tc.key != "" {
				req.Header.Set("X-Service-Key", tc.key)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
