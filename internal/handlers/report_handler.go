package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/export"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/reports"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/consultorio-api/internal/usecase/appointment"
)

type ReportHandler struct {
	repo domain.Repository
	list *ucAppointment.ListAppointments
	loc  *time.Location
}

func NewReportHandler(
	repo domain.Repository,
	list *ucAppointment.ListAppointments,
	loc *time.Location,
) *ReportHandler {
	return &ReportHandler{repo: repo, list: list, loc: loc}
}

// Appointments reports attended and absent counts over ?desde..?hasta.
func (h *ReportHandler) Appointments(c *gin.Context) {
	from, to, err := rangeQuery(c, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	desde := from.Format(timezone.DateLayout)
	hasta := to.Format(timezone.DateLayout)

	apps, err := h.repo.ListAppointments(c.Request.Context(), domain.ListFilter{From: desde, To: hasta})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reports.SummarizeAppointments(desde, hasta, apps))
}

// Occupancy compares the weekly template with bookings over the range.
func (h *ReportHandler) Occupancy(c *gin.Context) {
	from, to, err := rangeQuery(c, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	ctx := c.Request.Context()

	doctors, err := h.repo.ListDoctors(ctx)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	template, err := h.repo.ListAgenda(ctx)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	blackouts, err := h.repo.ListActiveBlackouts(ctx, 0)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	booked, err := h.repo.ListAppointments(ctx, domain.ListFilter{
		From: from.Format(timezone.DateLayout),
		To:   to.Format(timezone.DateLayout),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reports.ComputeOccupancy(reports.OccupancyInput{
		From:      from,
		To:        to,
		Doctors:   doctors,
		Template:  template,
		Blackouts: blackouts,
		Booked:    booked,
	}))
}

// Attendances exports the attended appointments of the range as CSV.
func (h *ReportHandler) Attendances(c *gin.Context) {
	from, to, err := rangeQuery(c, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	desde := from.Format(timezone.DateLayout)
	hasta := to.Format(timezone.DateLayout)

	rows, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Doctor: c.Query("medico"),
		From:   desde,
		To:     hasta,
		Status: string(domain.StatusSeen),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="atenciones_%s_%s.csv"`, desde, hasta))
	c.Status(http.StatusOK)

	if err := export.WriteAttendances(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}
