package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

type AppWebHandler struct {
	clinic string
}

func NewAppWebHandler(clinic string) *AppWebHandler {
	return &AppWebHandler{clinic: clinic}
}

func (h *AppWebHandler) render(c *gin.Context, page, title, role string) {
	c.HTML(http.StatusOK, "base", gin.H{
		"Page":   page,
		"Title":  title,
		"Role":   role,
		"Clinic": h.clinic,
	})
}

func (h *AppWebHandler) LoginPage(c *gin.Context) {
	h.render(c, "login", "Ingresar", "")
}

// Home sends each role to its landing page.
func (h *AppWebHandler) Home(c *gin.Context) {
	p := middleware.MustPrincipal(c)
	c.Redirect(http.StatusFound, "/"+p.Role)
}

func (h *AppWebHandler) FrontDesk(c *gin.Context) {
	h.render(c, "turnos", "Recepción", models.RoleFrontDesk)
}

func (h *AppWebHandler) Admin(c *gin.Context) {
	h.render(c, "turnos", "Administración", models.RoleAdmin)
}

func (h *AppWebHandler) Doctor(c *gin.Context) {
	h.render(c, "turnos", "Mis turnos", models.RoleDoctor)
}

func (h *AppWebHandler) Appointments(c *gin.Context) {
	h.render(c, "turnos", "Turnos", middleware.MustPrincipal(c).Role)
}

func (h *AppWebHandler) Patients(c *gin.Context) {
	h.render(c, "pacientes", "Pacientes", middleware.MustPrincipal(c).Role)
}

func (h *AppWebHandler) Agenda(c *gin.Context) {
	h.render(c, "agenda", "Agenda", middleware.MustPrincipal(c).Role)
}

func (h *AppWebHandler) History(c *gin.Context) {
	h.render(c, "historias", "Historias clínicas", models.RoleDoctor)
}
