package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestGenerateToken_RoundTrip(t *testing.T) {
	signed, err := GenerateToken("reporting", testSecret, time.Hour, []string{"tenant-a", "tenant-b"})
	require.NoError(t, err)

	claims, err := ParseToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "reporting", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Equal(t, []string{"tenant-a", "tenant-b"}, claims.Tenants)
}

func TestGenerateToken_RequiresSubjectAndTenants(t *testing.T) {
	_, err := GenerateToken("", testSecret, time.Hour, []string{"tenant-a"})
	assert.Error(t, err)
	_, err = GenerateToken("reporting", testSecret, time.Hour, nil)
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	signed, err := GenerateToken("reporting", testSecret, time.Hour, []string{"*"})
	require.NoError(t, err)
	_, err = ParseToken(signed, "another-secret")
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))

	expired, err := GenerateToken("reporting", testSecret, -time.Minute, []string{"*"})
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAuthMiddleware_TenantScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tenants/:tenant_id/ping", AuthMiddleware(testSecret), TenantScope(), func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.String(http.StatusOK, userID)
	})

	token, err := GenerateToken("user-1", testSecret, time.Hour, []string{"tenant-a"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"granted", "/tenants/tenant-a/ping", "Bearer " + token, http.StatusOK},
		{"other tenant", "/tenants/tenant-b/ping", "Bearer " + token, http.StatusForbidden},
		{"missing header", "/tenants/tenant-a/ping", "", http.StatusUnauthorized},
		{"wrong scheme", "/tenants/tenant-a/ping", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "/tenants/tenant-a/ping", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
			}
		})
	}
}
