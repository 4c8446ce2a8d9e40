package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/patient"
	"github.com/BruksfildServices01/consultorio-api/internal/export"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

var errPaymentNotFound = httperr.Missing("payment_not_found", "Pago no encontrado")

type PaymentHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewPaymentHandler(db *gorm.DB, audit *audit.Dispatcher, loc *time.Location) *PaymentHandler {
	return &PaymentHandler{db: db, audit: audit, loc: loc}
}

type CreatePaymentRequest struct {
	PatientDNI string   `json:"dni_paciente" binding:"required"`
	Amount     *float64 `json:"monto" binding:"required"`
	Method     string   `json:"tipo_pago"`
	Date       string   `json:"fecha"`
	Notes      string   `json:"observaciones"`
}

type PaymentRow struct {
	models.Payment
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
}

type PaymentStats struct {
	Date          string  `json:"fecha"`
	DayTotal      float64 `json:"total_dia"`
	DayCount      int     `json:"cantidad_dia"`
	MonthTotal    float64 `json:"total_mes"`
	DayCash       float64 `json:"efectivo_dia"`
	DayTransfer   float64 `json:"transferencia_dia"`
	DayInsurer    int     `json:"obra_social_dia"`
	MonthCash     float64 `json:"efectivo_mes"`
	MonthTransfer float64 `json:"transferencia_mes"`
}

// ======================================================
// LIST
// ======================================================

func (h *PaymentHandler) List(c *gin.Context) {
	date, err := dateQuery(c, "fecha", h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var payments []models.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Patient").
		Where("date = ?", date).
		Order("id ASC").
		Find(&payments).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		row := PaymentRow{Payment: p}
		if p.Patient != nil {
			row.FirstName = p.Patient.FirstName
			row.LastName = p.Patient.LastName
		}
		out = append(out, row)
	}
	httpresp.List(c, out)
}

// ======================================================
// CREATE (manual payment outside the workflow)
// ======================================================

func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	dni, err := patient.NormalizeDNI(req.PatientDNI)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	method, err := domain.PaymentMethodFor(*req.Amount, req.Method)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	date := timezone.Today(h.loc)
	if strings.TrimSpace(req.Date) != "" {
		d, err := timezone.ParseDate(strings.TrimSpace(req.Date), h.loc)
		if err != nil {
			httperr.Respond(c, domain.ErrInvalidDate)
			return
		}
		date = d.Format(timezone.DateLayout)
	}

	ctx := c.Request.Context()

	var pat models.Patient
	res := h.db.WithContext(ctx).Where("dni = ?", dni).Limit(1).Find(&pat)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, domain.ErrPatientNotFound)
		return
	}

	payment := models.Payment{
		PatientDNI: dni,
		Amount:     *req.Amount,
		Date:       date,
		Method:     method,
		Insurer:    pat.Insurer,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if err := h.db.WithContext(ctx).Create(&payment).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "payment_created", "payment", &payment.ID, gin.H{
		"dni":       dni,
		"monto":     payment.Amount,
		"tipo_pago": payment.Method,
	}))
	httpresp.Created(c, payment)
}

// ======================================================
// DELETE
// ======================================================

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Payment{}, id)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, errPaymentNotFound)
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "payment_deleted", "payment", &id, nil))
	c.JSON(http.StatusOK, gin.H{"mensaje": "Pago eliminado"})
}

// ======================================================
// STATS
// ======================================================

func (h *PaymentHandler) Stats(c *gin.Context) {
	date, err := dateQuery(c, "fecha", h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	// YYYY-MM prefix covers the whole month
	month := date[:7]

	var payments []models.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Where("date >= ? AND date <= ?", month+"-01", month+"-31").
		Find(&payments).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, summarizePayments(date, payments))
}

func summarizePayments(date string, payments []models.Payment) PaymentStats {
	s := PaymentStats{Date: date}
	for _, p := range payments {
		s.MonthTotal += p.Amount
		switch p.Method {
		case models.PaymentCash:
			s.MonthCash += p.Amount
		case models.PaymentTransfer:
			s.MonthTransfer += p.Amount
		}

		if p.Date != date {
			continue
		}
		s.DayCount++
		s.DayTotal += p.Amount
		switch p.Method {
		case models.PaymentCash:
			s.DayCash += p.Amount
		case models.PaymentTransfer:
			s.DayTransfer += p.Amount
		case models.PaymentInsurer:
			s.DayInsurer++
		}
	}
	return s
}

// ======================================================
// EXPORT
// ======================================================

func (h *PaymentHandler) Export(c *gin.Context) {
	from, to, err := rangeQuery(c, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	desde := from.Format(timezone.DateLayout)
	hasta := to.Format(timezone.DateLayout)

	var payments []models.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Where("date >= ? AND date <= ?", desde, hasta).
		Order("date ASC, id ASC").
		Find(&payments).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="pagos_%s_%s.csv"`, desde, hasta))
	c.Status(http.StatusOK)

	if err := export.WritePayments(c.Writer, payments); err != nil {
		_ = c.Error(err)
	}
}
