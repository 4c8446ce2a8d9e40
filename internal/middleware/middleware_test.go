package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", time.Hour)
}

func tokenFor(t *testing.T, issuer *auth.TokenIssuer, role string) string {
	t.Helper()
	tok, err := issuer.Issue(&models.User{ID: 7, Username: "u", Role: role}, time.Now())
	require.NoError(t, err)
	return tok
}

func protected(issuer *auth.TokenIssuer, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/x", AuthMiddleware(issuer), RequireRoles(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, MustPrincipal(c).Role)
	})
	return r
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	r := protected(newIssuer(), models.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")
}

func TestRequireRoles(t *testing.T) {
	issuer := newIssuer()
	r := protected(issuer, models.RoleFrontDesk, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, models.RoleDoctor))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tokenFor(t, issuer, models.RoleFrontDesk)})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleFrontDesk, w.Body.String())
}

func TestPageAuthRedirects(t *testing.T) {
	r := gin.New()
	r.GET("/secretaria", PageAuth(newIssuer()), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secretaria", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logging.Discard(), nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allow, s.err }

func TestRateLimit(t *testing.T) {
	run := func(l stubLimiter) int {
		r := gin.New()
		r.GET("/x", RateLimit(l, logging.Discard()), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, run(stubLimiter{allow: true}))
	assert.Equal(t, http.StatusTooManyRequests, run(stubLimiter{allow: false}))
	assert.Equal(t, http.StatusOK, run(stubLimiter{err: errors.New("redis down")}))
}
