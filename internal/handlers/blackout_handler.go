package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	ucBlackout "github.com/BruksfildServices01/consultorio-api/internal/usecase/blackout"
)

type BlackoutHandler struct {
	manager *ucBlackout.Manager
}

func NewBlackoutHandler(manager *ucBlackout.Manager) *BlackoutHandler {
	return &BlackoutHandler{manager: manager}
}

type CreateBlackoutRequest struct {
	Doctor    string `json:"medico"`
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
	Reason    string `json:"motivo"`
}

func (h *BlackoutHandler) Create(c *gin.Context) {
	var req CreateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	out, err := h.manager.Create(c.Request.Context(), ucBlackout.CreateInput{
		Doctor:    req.Doctor,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Actor:     middleware.MustPrincipal(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, out)
}

func (h *BlackoutHandler) List(c *gin.Context) {
	out, err := h.manager.List(c.Request.Context(), c.Query("medico"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *BlackoutHandler) Deactivate(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.manager.Deactivate(c.Request.Context(), id, middleware.MustPrincipal(c)); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Bloqueo eliminado"})
}
