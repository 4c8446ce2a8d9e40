package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

type AuthHandler struct {
	db           *gorm.DB
	issuer       *auth.TokenIssuer
	audit        *audit.Dispatcher
	secureCookie bool
}

func NewAuthHandler(
	db *gorm.DB,
	issuer *auth.TokenIssuer,
	audit *audit.Dispatcher,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer, audit: audit, secureCookie: secureCookie}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"usuario" binding:"required"`
	Password string `json:"contrasena" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	var user models.User
	res := h.db.WithContext(c.Request.Context()).
		Where("username = ? AND active = ?", strings.TrimSpace(req.Username), true).
		Limit(1).
		Find(&user)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Unauthorized(c, "invalid_credentials", "Usuario o contraseña incorrectos")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Usuario o contraseña incorrectos")
		return
	}

	token, err := h.issuer.Issue(&user, time.Now())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.issuer.TTL().Seconds()), "/", "", h.secureCookie, true)

	h.audit.Dispatch(auditEvent(
		auth.Principal{UserID: user.ID, Username: user.Username, Role: user.Role},
		"login", "user", &user.ID, nil,
	))

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"usuario": gin.H{
			"id":      user.ID,
			"usuario": user.Username,
			"rol":     user.Role,
			"nombre":  user.FullName,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"mensaje": "Sesión cerrada"})
}

// SessionInfo describes the caller behind the current token.
func (h *AuthHandler) SessionInfo(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	var user models.User
	res := h.db.WithContext(c.Request.Context()).Where("id = ?", p.UserID).Limit(1).Find(&user)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 || !user.Active {
		httperr.Unauthorized(c, "invalid_token", "Sesión inválida o vencida")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"usuario":      user.Username,
		"rol":          user.Role,
		"nombre":       user.FullName,
		"especialidad": user.Specialty,
	})
}
