package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/reports"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

var errInvalidID = httperr.Validation("invalid_request", "Identificador inválido")

// dateQuery reads a YYYY-MM-DD query value in the clinic timezone,
// defaulting to today.
func dateQuery(c *gin.Context, key string, loc *time.Location) (string, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return timezone.Today(loc), nil
	}
	d, err := timezone.ParseDate(raw, loc)
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	return d.Format(timezone.DateLayout), nil
}

// rangeQuery reads ?desde= and ?hasta=, defaulting to the current month.
func rangeQuery(c *gin.Context, loc *time.Location) (time.Time, time.Time, error) {
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, -1)

	if raw := strings.TrimSpace(c.Query("desde")); raw != "" {
		d, err := timezone.ParseDate(raw, loc)
		if err != nil {
			return from, to, domain.ErrInvalidDate
		}
		from = d
	}
	if raw := strings.TrimSpace(c.Query("hasta")); raw != "" {
		d, err := timezone.ParseDate(raw, loc)
		if err != nil {
			return from, to, domain.ErrInvalidDate
		}
		to = d
	}

	if to.Before(from) || to.Sub(from) > reports.MaxRangeDays*24*time.Hour {
		return from, to, domain.ErrInvalidDateRange
	}
	return from, to, nil
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// keyParams reads /:<dniParam>/:fecha/:hora.
func keyParams(c *gin.Context, dniParam string) domain.Key {
	return domain.Key{
		PatientDNI: c.Param(dniParam),
		Date:       c.Param("fecha"),
		Time:       c.Param("hora"),
	}
}

func invalidBody(err error) error {
	return httperr.Validation("invalid_request", "Datos inválidos: "+err.Error())
}
