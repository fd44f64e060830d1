package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

// fakeSessions P-GONE 은 비활성화된 파트너
type fakeSessions struct{}

func (fakeSessions) SessionFromClaims(claims *util.Claims) (*model.Session, error) {
	if claims.Subject == "P-GONE" {
		return nil, service.ErrSessionGone
	}
	return &model.Session{
		PartnerID: claims.Subject,
		Name:      claims.Name,
		Level:     model.SessionRole(claims.Role),
	}, nil
}

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware, redis.TokenBlacklist) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	blacklist := redis.NewTokenBlacklist()
	return router, NewAuthMiddleware(testJWTSecret, blacklist, fakeSessions{}), blacklist
}

func generateTestTokens(t *testing.T, subject, role string) *util.TokenPair {
	tokens, err := util.GenerateTokenPair(util.Identity{
		Subject: subject,
		Name:    "테스트",
		Role:    role,
	}, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func serve(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, auth, _ := setupMiddlewareTest()
	token := generateTestTokens(t, "P-1", "partner").AccessToken

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		session, ok := GetSession(c)
		require.True(t, ok)
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"partnerId": session.PartnerID,
			"role":      claims.Role,
			"sameToken": GetAccessToken(c) == token,
		})
	})

	w := serve(router, "/test", token)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "P-1", body["partnerId"])
	assert.Equal(t, "partner", body["role"])
	assert.Equal(t, true, body["sameToken"])
}

func TestAuthMiddleware_Authenticate_Failures(t *testing.T) {
	router, auth, blacklist := setupMiddlewareTest()
	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	revoked := generateTestTokens(t, "P-1", "partner").AccessToken
	require.NoError(t, blacklist.Revoke(context.Background(), revoked, time.Minute))

	expired, err := util.GenerateTokenPair(util.Identity{Subject: "P-1", Role: "partner"}, testJWTSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"No token", "", errors.AuthUnauthorized},
		{"Bad format", "Token abc", errors.AuthTokenInvalid},
		{"Garbage", "Bearer abc", errors.AuthTokenInvalid},
		{"Expired", "Bearer " + expired.AccessToken, errors.AuthTokenExpired},
		{"Refresh token", "Bearer " + generateTestTokens(t, "P-1", "partner").RefreshToken, errors.AuthTokenInvalid},
		{"Revoked", "Bearer " + revoked, errors.AuthTokenRevoked},
		{"Deactivated partner", "Bearer " + generateTestTokens(t, "P-GONE", "partner").AccessToken, errors.AuthTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	router, auth, _ := setupMiddlewareTest()
	router.GET("/ws", auth.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	token := generateTestTokens(t, "P-1", "partner").AccessToken
	w := serve(router, "/ws?token="+token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, auth, _ := setupMiddlewareTest()
	router.GET("/admin", auth.Authenticate(), auth.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/any", auth.Authenticate(), auth.RequireRole("partner", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/no-auth", auth.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	admin := generateTestTokens(t, "ADMIN-001", "admin").AccessToken
	partner := generateTestTokens(t, "P-1", "partner").AccessToken

	assert.Equal(t, http.StatusOK, serve(router, "/admin", admin).Code)
	assert.Equal(t, http.StatusOK, serve(router, "/any", partner).Code)

	w := serve(router, "/admin", partner)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errors.AuthzAdminOnly, decodeError(t, w).Error)

	w = serve(router, "/no-auth", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errors.AuthzRoleNotFound, decodeError(t, w).Error)
}
