package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/consultorio-api/internal/usecase/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/validators"
)

var errInvalidEmail = httperr.Validation("invalid_email", "El email ingresado no es válido")

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves patient self-service without a session.
type PublicHandler struct {
	repo         domain.Repository
	availability *ucAppointment.GetAvailability
	create       *ucAppointment.CreateAppointment
	emails       *validators.EmailChecker
}

func NewPublicHandler(
	repo domain.Repository,
	availability *ucAppointment.GetAvailability,
	create *ucAppointment.CreateAppointment,
	emails *validators.EmailChecker,
) *PublicHandler {
	return &PublicHandler{
		repo:         repo,
		availability: availability,
		create:       create,
		emails:       emails,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	Doctor string `json:"medico" binding:"required"`
	Date   string `json:"fecha" binding:"required"` // YYYY-MM-DD
	Time   string `json:"hora" binding:"required"`  // HH:MM
	DNI    string `json:"dni" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

type PublicDoctor struct {
	Username  string `json:"usuario"`
	FullName  string `json:"nombre"`
	Specialty string `json:"especialidad"`
}

////////////////////////////////////////////////////////
// DOCTORS
////////////////////////////////////////////////////////

func (h *PublicHandler) Doctors(c *gin.Context) {
	doctors, err := h.repo.ListDoctors(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]PublicDoctor, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, PublicDoctor{Username: d.Username, FullName: d.FullName, Specialty: d.Specialty})
	}
	httpresp.List(c, out)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// AvailableSlots answers the bare list of open times. A blacked-out day
// is a 400 carrying bloqueado and motivo.
func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	doctor := strings.TrimSpace(c.Query("medico"))
	date := strings.TrimSpace(c.Query("fecha"))
	if doctor == "" || date == "" {
		httperr.Respond(c, httperr.Validation("invalid_request", "medico y fecha son obligatorios"))
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{Doctor: doctor, Date: date})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if out.Blocked {
		httperr.Respond(c, domain.ErrDoctorUnavailable(out.Reason))
		return
	}

	c.JSON(http.StatusOK, out.Slots)
}

////////////////////////////////////////////////////////
// BOOKING
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.emails.Valid(c.Request.Context(), email) {
		httperr.Respond(c, errInvalidEmail)
		return
	}

	actor, _ := middleware.PrincipalFrom(c)
	if actor.Username == "" {
		actor.Username = "autogestion"
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Doctor:     req.Doctor,
		Date:       req.Date,
		Time:       req.Time,
		PatientDNI: req.DNI,
		Email:      email,
		Channel:    ucAppointment.ChannelPublic,
		Actor:      actor,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"turno_id": ap.ID,
		"medico":   ap.Doctor.Username,
		"fecha":    ap.Date,
		"hora":     ap.Time,
		"mensaje":  "Turno reservado. Le enviamos la confirmación por email.",
	})
}
