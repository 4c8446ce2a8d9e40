package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	ucAgenda "github.com/BruksfildServices01/consultorio-api/internal/usecase/agenda"
)

type AgendaHandler struct {
	get     *ucAgenda.GetAgenda
	replace *ucAgenda.ReplaceAgenda
}

func NewAgendaHandler(get *ucAgenda.GetAgenda, replace *ucAgenda.ReplaceAgenda) *AgendaHandler {
	return &AgendaHandler{get: get, replace: replace}
}

func (h *AgendaHandler) Get(c *gin.Context) {
	out, err := h.get.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Replace swaps the doctor's whole week. Body: {"LUNES": ["08:00", ...]}.
func (h *AgendaHandler) Replace(c *gin.Context) {
	var body map[string][]string
	if err := c.ShouldBindJSON(&body); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	week, err := h.replace.Execute(c.Request.Context(), c.Param("medico"), body, middleware.MustPrincipal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medico": c.Param("medico"),
		"agenda": week,
	})
}
