package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newProtected(j *JWT, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	chain := append([]echo.MiddlewareFunc{j.Middleware()}, mw...)
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"userId":   GetUserIDFromToken(c),
			"userType": ExtractUserType(c),
		})
	}, chain...)
	e.POST("/logout", func(c echo.Context) error {
		if err := j.Revoke(c); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}, j.Middleware())
	return e
}

func do(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAcceptsIssuedToken(t *testing.T) {
	j := NewJWT("secret", time.Hour, nil, nil)
	token, err := j.Generate("abc", "a@b.c", "vendor")
	require.NoError(t, err)

	rec := do(newProtected(j), http.MethodGet, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["userId"])
	assert.Equal(t, "vendor", body["userType"])
}

func TestJWTQueryToken(t *testing.T) {
	j := NewJWT("secret", time.Hour, nil, nil)
	token, err := j.Generate("abc", "a@b.c", "admin")
	require.NoError(t, err)

	rec := do(newProtected(j), http.MethodGet, "/me?token="+token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTRejectsMissingAndForeignTokens(t *testing.T) {
	j := NewJWT("secret", time.Hour, nil, nil)
	other := NewJWT("other", time.Hour, nil, nil)
	foreign, err := other.Generate("abc", "a@b.c", "vendor")
	require.NoError(t, err)

	e := newProtected(j)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/me", foreign).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/me", "not.a.token").Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	j := NewJWT("secret", time.Hour, nil, nil)
	claims := &JwtCustomClaims{UserID: "abc", UserType: "vendor"}
	claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(newProtected(j), http.MethodGet, "/me", token).Code)
}

func TestJWTWithoutSecret(t *testing.T) {
	j := NewJWT("", time.Hour, nil, nil)
	_, err := j.Generate("abc", "a@b.c", "vendor")
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(newProtected(j), http.MethodGet, "/me", "x").Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	j := NewJWT("secret", time.Hour, NewTokenBlacklist(nil), nil)
	token, err := j.Generate("abc", "a@b.c", "vendor")
	require.NoError(t, err)
	e := newProtected(j)

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/me", token).Code)
	require.Equal(t, http.StatusNoContent, do(e, http.MethodPost, "/logout", token).Code)

	rec := do(e, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalidated")
}

func TestTokenBlacklistExpiry(t *testing.T) {
	b := NewTokenBlacklist(nil)
	ctx := context.Background()

	require.NoError(t, b.Add(ctx, "past", time.Now().Add(-time.Second)))
	ok, err := b.Contains(ctx, "past")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Add(ctx, "live", time.Now().Add(time.Hour)))
	ok, _ = b.Contains(ctx, "live")
	assert.True(t, ok)

	b.local[tokenKey("live")] = time.Now().Add(-time.Second)
	b.Cleanup()
	assert.Empty(t, b.local)
}

func TestRequireUserType(t *testing.T) {
	j := NewJWT("secret", time.Hour, nil, nil)
	e := newProtected(j, RequireUserType(nil, "admin"))

	admin, _ := j.Generate("1", "a@b.c", "admin")
	vendor, _ := j.Generate("2", "v@b.c", "vendor")

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/me", admin).Code)

	rec := do(e, http.MethodGet, "/me", vendor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter()
	rl.SetEndpointLimit("/api/auth/login", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(rl.RateLimit())
	e.POST("/api/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/auth/login", "").Code)

	rec := do(e, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// the block covers every route for that address
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodGet, "/health", "").Code)

	now := time.Now()
	rl.now = func() time.Time { return now.Add(10 * time.Minute) }
	rl.Cleanup()
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{AllowedDomains: []string{"wss://example.com"}}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := do(e, http.MethodGet, "/", "")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' wss://example.com")
}

func TestBuildCSP(t *testing.T) {
	csp := buildCSP(SecurityConfig{})
	assert.Contains(t, csp, "script-src 'self'")
	assert.NotContains(t, csp, "unsafe-eval")
	assert.Contains(t, buildCSP(SecurityConfig{AllowInlineJS: true, AllowEval: true}),
		"script-src 'self' 'unsafe-inline' 'unsafe-eval'")
}

func TestNewCORSConfig(t *testing.T) {
	cfg := NewCORSConfig(" https://a.com, ,https://b.com ")
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)

	cfg = NewCORSConfig("*")
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.False(t, cfg.AllowCredentials)

	cfg = NewCORSConfig("")
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
}
