package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/dto"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	ucAppointment "github.com/BruksfildServices01/consultorio-api/internal/usecase/appointment"
)

// FrontDeskHandler drives the reception workflow: arrival, payment and
// the doctor's call.
type FrontDeskHandler struct {
	checkIn *ucAppointment.CheckIn
	collect *ucAppointment.CollectPayment
	status  *ucAppointment.UpdateStatus
	list    *ucAppointment.ListAppointments
	db      *gorm.DB
	loc     *time.Location
}

func NewFrontDeskHandler(
	checkIn *ucAppointment.CheckIn,
	collect *ucAppointment.CollectPayment,
	status *ucAppointment.UpdateStatus,
	list *ucAppointment.ListAppointments,
	db *gorm.DB,
	loc *time.Location,
) *FrontDeskHandler {
	return &FrontDeskHandler{
		checkIn: checkIn,
		collect: collect,
		status:  status,
		list:    list,
		db:      db,
		loc:     loc,
	}
}

type AppointmentKeyRequest struct {
	PatientDNI string `json:"dni_paciente" binding:"required"`
	Date       string `json:"fecha" binding:"required"`
	Time       string `json:"hora" binding:"required"`
}

func (r AppointmentKeyRequest) key() domain.Key {
	return domain.Key{PatientDNI: r.PatientDNI, Date: r.Date, Time: r.Time}
}

type CollectPaymentRequest struct {
	AppointmentKeyRequest
	Amount *float64 `json:"monto" binding:"required"`
	Method string   `json:"tipo_pago"`
	Notes  string   `json:"observaciones"`
}

type UpdateStatusRequest struct {
	AppointmentKeyRequest
	Status string `json:"estado" binding:"required"`
}

func appointmentState(ap *models.Appointment) gin.H {
	return gin.H{
		"turno_id": ap.ID,
		"estado":   ap.Status,
		"pagado":   ap.Paid,
	}
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *FrontDeskHandler) CheckIn(c *gin.Context) {
	var req AppointmentKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	ap, err := h.checkIn.Execute(c.Request.Context(), req.key(), middleware.MustPrincipal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentState(ap))
}

func (h *FrontDeskHandler) CollectPayment(c *gin.Context) {
	var req CollectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	out, err := h.collect.Execute(c.Request.Context(), ucAppointment.CollectPaymentInput{
		Key:    req.key(),
		Amount: *req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
		Actor:  middleware.MustPrincipal(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	body := appointmentState(out.Appointment)
	body["pago"] = out.Payment
	c.JSON(http.StatusOK, body)
}

func (h *FrontDeskHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), req.key(), req.Status, middleware.MustPrincipal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentState(ap))
}

// ======================================================
// LISTS
// ======================================================

func (h *FrontDeskHandler) byStatus(c *gin.Context, status domain.Status) ([]dto.AppointmentListDTO, bool) {
	date, err := dateQuery(c, "fecha", h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}

	out, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Doctor: c.Query("medico"),
		Date:   date,
		Status: string(status),
	})
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}
	return out, true
}

func (h *FrontDeskHandler) CheckedIn(c *gin.Context) {
	out, ok := h.byStatus(c, domain.StatusCheckedIn)
	if !ok {
		return
	}
	httpresp.List(c, out)
}

type WaitingRoomEntry struct {
	dto.AppointmentListDTO
	Payment *models.Payment `json:"pago"`
}

// WaitingRoom lists paid patients with the payment taken that day.
func (h *FrontDeskHandler) WaitingRoom(c *gin.Context) {
	list, ok := h.byStatus(c, domain.StatusWaitingRoom)
	if !ok {
		return
	}

	out := make([]WaitingRoomEntry, 0, len(list))
	if len(list) == 0 {
		httpresp.List(c, out)
		return
	}

	dnis := make([]string, 0, len(list))
	for _, ap := range list {
		dnis = append(dnis, ap.PatientDNI)
	}

	var payments []models.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Where("date = ? AND patient_dni IN ?", list[0].Date, dnis).
		Order("id ASC").
		Find(&payments).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	latest := make(map[string]*models.Payment, len(payments))
	for i := range payments {
		latest[payments[i].PatientDNI] = &payments[i]
	}

	for _, ap := range list {
		out = append(out, WaitingRoomEntry{AppointmentListDTO: ap, Payment: latest[ap.PatientDNI]})
	}
	httpresp.List(c, out)
}
