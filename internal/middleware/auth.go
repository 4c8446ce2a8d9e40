package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
)

const (
	ContextPrincipal = "principal"

	// TokenCookie carries the JWT for server-rendered pages.
	TokenCookie = "token"
)

func tokenFrom(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// AuthMiddleware resolves the caller from the bearer header or the token
// cookie and stores it in the context.
func AuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := tokenFrom(c)
		if !ok {
			httperr.Unauthorized(c, "missing_token", "Debe iniciar sesión")
			c.Abort()
			return
		}

		p, err := issuer.Parse(raw)
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Sesión inválida o vencida")
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, p)
		c.Next()
	}
}

// PageAuth is AuthMiddleware for HTML routes: it redirects to /login
// instead of answering JSON.
func PageAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := tokenFrom(c)
		if ok {
			if p, err := issuer.Parse(raw); err == nil {
				c.Set(ContextPrincipal, p)
				c.Next()
				return
			}
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			httperr.Unauthorized(c, "missing_token", "Debe iniciar sesión")
			c.Abort()
			return
		}
		if !auth.Allows(p, roles...) {
			httperr.Forbidden(c, "forbidden", "No tiene permisos para esta acción")
			c.Abort()
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// MustPrincipal is for handlers mounted behind AuthMiddleware.
func MustPrincipal(c *gin.Context) auth.Principal {
	p, _ := PrincipalFrom(c)
	return p
}
