package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

var (
	errUserNotFound   = httperr.Missing("user_not_found", "Usuario no encontrado")
	errUsernameExists = httperr.Conflict("username_already_exists", "El nombre de usuario ya existe")
	errInvalidRole    = httperr.Validation("invalid_role", "Rol inválido")
)

type UserHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewUserHandler(db *gorm.DB, audit *audit.Dispatcher) *UserHandler {
	return &UserHandler{db: db, audit: audit}
}

type CreateUserRequest struct {
	Username  string `json:"usuario" binding:"required,min=3"`
	Password  string `json:"contrasena" binding:"required,min=6"`
	Role      string `json:"rol" binding:"required"`
	FullName  string `json:"nombre"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Specialty string `json:"especialidad"`
}

type UpdateUserRequest struct {
	Password  *string `json:"contrasena"`
	Role      *string `json:"rol"`
	FullName  *string `json:"nombre"`
	Email     *string `json:"email"`
	Phone     *string `json:"telefono"`
	Specialty *string `json:"especialidad"`
	Active    *bool   `json:"activo"`
}

func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if role := strings.TrimSpace(c.Query("rol")); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Order("full_name ASC, username ASC").Find(&users).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}
	if !auth.ValidRole(req.Role) {
		httperr.Respond(c, errInvalidRole)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hashed),
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Specialty:    strings.TrimSpace(req.Specialty),
		Active:       true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || httperr.IsUniqueViolation(err) {
			httperr.Respond(c, errUsernameExists)
			return
		}
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "user_created", "user", &user.ID, gin.H{
		"usuario": user.Username,
		"rol":     user.Role,
	}))

	httpresp.Created(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	ctx := c.Request.Context()

	var user models.User
	res := h.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&user)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, errUserNotFound)
		return
	}

	updates := map[string]any{}
	if req.Role != nil {
		if !auth.ValidRole(*req.Role) {
			httperr.Respond(c, errInvalidRole)
			return
		}
		updates["role"] = *req.Role
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			httperr.Respond(c, httperr.Validation("invalid_request", "La contraseña debe tener al menos 6 caracteres"))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		updates["password_hash"] = string(hashed)
	}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Specialty != nil {
		updates["specialty"] = strings.TrimSpace(*req.Specialty)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	changed := make([]string, 0, len(updates))
	for k := range updates {
		if k != "password_hash" {
			changed = append(changed, k)
		}
	}
	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "user_updated", "user", &user.ID, gin.H{
		"campos": changed,
	}))

	if err := h.db.WithContext(ctx).First(&user, user.ID).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
