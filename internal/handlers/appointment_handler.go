package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/consultorio-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *ucAppointment.CreateAppointment
	availability *ucAppointment.GetAvailability
	reschedule   *ucAppointment.Reschedule
	remove       *ucAppointment.DeleteAppointment
	list         *ucAppointment.ListAppointments
	loc          *time.Location
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	availability *ucAppointment.GetAvailability,
	reschedule *ucAppointment.Reschedule,
	remove *ucAppointment.DeleteAppointment,
	list *ucAppointment.ListAppointments,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		availability: availability,
		reschedule:   reschedule,
		remove:       remove,
		list:         list,
		loc:          loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	Doctor           string  `json:"medico"`
	Date             string  `json:"fecha"`
	Time             string  `json:"hora"`
	PatientDNI       string  `json:"dni_paciente"`
	ConsultationType string  `json:"tipo_consulta"`
	Cost             float64 `json:"costo"`
	Notes            string  `json:"observaciones"`
}

type RescheduleRequest struct {
	Date   string `json:"fecha" binding:"required"`
	Time   string `json:"hora" binding:"required"`
	Doctor string `json:"medico"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Doctor:           req.Doctor,
		Date:             req.Date,
		Time:             req.Time,
		PatientDNI:       req.PatientDNI,
		ConsultationType: req.ConsultationType,
		Cost:             req.Cost,
		Notes:            req.Notes,
		Channel:          ucAppointment.ChannelStaff,
		Actor:            middleware.MustPrincipal(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"turno_id": ap.ID,
		"mensaje":  "Turno asignado",
	})
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	out, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Doctor: c.Query("medico"),
		Date:   c.Query("fecha"),
		From:   c.Query("desde"),
		To:     c.Query("hasta"),
		Status: c.Query("estado"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

// Day lists one date for the whole clinic, today by default.
func (h *AppointmentHandler) Day(c *gin.Context) {
	out, err := h.list.Day(c.Request.Context(), c.Query("medico"), c.Query("fecha"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

// ByDoctor lists the caller's own day. Staff pick the doctor with ?medico=.
func (h *AppointmentHandler) ByDoctor(c *gin.Context) {
	p := middleware.MustPrincipal(c)

	doctor := p.Username
	if !p.IsDoctor() {
		doctor = strings.TrimSpace(c.Query("medico"))
		if doctor == "" {
			httperr.Respond(c, httperr.Validation("invalid_request", "Debe indicar el médico"))
			return
		}
	}

	out, err := h.list.Day(c.Request.Context(), doctor, c.Query("fecha"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *AppointmentHandler) ByMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("anio"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.Respond(c, httperr.Validation("invalid_year", "Año inválido"))
		return
	}
	month, err := strconv.Atoi(c.Query("mes"))
	if err != nil || month < 1 || month > 12 {
		httperr.Respond(c, httperr.Validation("invalid_month", "Mes inválido"))
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, h.loc)
	end := start.AddDate(0, 1, -1)

	doctor := c.Query("medico")
	if p := middleware.MustPrincipal(c); p.IsDoctor() && doctor == "" {
		doctor = p.Username
	}

	out, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Doctor: doctor,
		From:   start.Format(timezone.DateLayout),
		To:     end.Format(timezone.DateLayout),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anio":   year,
		"mes":    month,
		"turnos": out,
	})
}

// Available is the staff view of the resolver. Blocked days answer 200
// with bloqueado set.
func (h *AppointmentHandler) Available(c *gin.Context) {
	out, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		Doctor: c.Query("medico"),
		Date:   c.Query("fecha"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleInput{
		Key:     keyParams(c, "id"),
		NewDate: req.Date,
		NewTime: req.Time,
		Doctor:  req.Doctor,
		Actor:   middleware.MustPrincipal(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"turno_id": ap.ID,
		"medico":   ap.Doctor.Username,
		"fecha":    ap.Date,
		"hora":     ap.Time,
	})
}

// ======================================================
// DELETE
// ======================================================

func (h *AppointmentHandler) DeleteByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.remove.ByID(c.Request.Context(), id, middleware.MustPrincipal(c)); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Turno eliminado"})
}

// DeleteByKey shares the :id segment with DeleteByID; here it holds the
// patient's DNI.
func (h *AppointmentHandler) DeleteByKey(c *gin.Context) {
	if err := h.remove.ByKey(c.Request.Context(), keyParams(c, "id"), middleware.MustPrincipal(c)); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Turno eliminado"})
}
