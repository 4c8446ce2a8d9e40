package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/patient"
	"github.com/BruksfildServices01/consultorio-api/internal/dto"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

var (
	errDNIExists       = httperr.Conflict("dni_already_exists", "Ya existe un paciente con ese DNI")
	errHasAppointments = httperr.Conflict("patient_has_appointments", "El paciente tiene turnos asignados")
	errInvalidBirth    = httperr.Validation("invalid_date_format", "Fecha de nacimiento inválida (usar YYYY-MM-DD)")
)

// ======================================================
// HANDLER
// ======================================================

type PatientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewPatientHandler(db *gorm.DB, audit *audit.Dispatcher, loc *time.Location) *PatientHandler {
	return &PatientHandler{db: db, audit: audit, loc: loc}
}

// ======================================================
// REQUESTS
// ======================================================

type PatientFields struct {
	FirstName     string `json:"nombre" binding:"required"`
	LastName      string `json:"apellido" binding:"required"`
	BirthDate     string `json:"fecha_nacimiento" binding:"required"`
	Insurer       string `json:"obra_social" binding:"required"`
	InsurerNumber string `json:"numero_obra_social" binding:"required"`
	Phone         string `json:"celular" binding:"required"`
	Email         string `json:"email"`
}

type CreatePatientRequest struct {
	DNI string `json:"dni" binding:"required"`
	PatientFields
}

// UpdatePatientRequest may carry a new DNI.
type UpdatePatientRequest struct {
	DNI string `json:"dni"`
	PatientFields
}

func (f PatientFields) apply(p *models.Patient, loc *time.Location) error {
	birth := strings.TrimSpace(f.BirthDate)
	if _, err := timezone.ParseDate(birth, loc); err != nil {
		return errInvalidBirth
	}
	p.FirstName = strings.TrimSpace(f.FirstName)
	p.LastName = strings.TrimSpace(f.LastName)
	p.BirthDate = birth
	p.Insurer = strings.TrimSpace(f.Insurer)
	p.InsurerNumber = strings.TrimSpace(f.InsurerNumber)
	p.Phone = strings.TrimSpace(f.Phone)
	p.Email = strings.TrimSpace(f.Email)
	return nil
}

func (h *PatientHandler) find(c *gin.Context, db *gorm.DB, dni string) (*models.Patient, error) {
	var p models.Patient
	res := db.WithContext(c.Request.Context()).Where("dni = ?", dni).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrPatientNotFound
	}
	return &p, nil
}

// ======================================================
// LIST / GET
// ======================================================

func (h *PatientHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Patient{})

	if term := strings.ToLower(strings.TrimSpace(c.Query("q"))); term != "" {
		like := "%" + term + "%"
		q = q.Where("dni LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var patients []models.Patient
	if err := q.Order("last_name ASC, first_name ASC").Limit(500).Find(&patients).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	now := time.Now().In(h.loc)
	out := make([]dto.PatientDTO, 0, len(patients))
	for _, p := range patients {
		out = append(out, dto.PatientFrom(p, now))
	}
	httpresp.List(c, out)
}

func (h *PatientHandler) Get(c *gin.Context) {
	dni, err := patient.NormalizeDNI(c.Param("dni"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	p, err := h.find(c, h.db, dni)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PatientFrom(*p, time.Now().In(h.loc)))
}

// ======================================================
// CREATE
// ======================================================

func (h *PatientHandler) Create(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	dni, err := patient.NormalizeDNI(req.DNI)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	p := models.Patient{DNI: dni}
	if err := req.apply(&p, h.loc); err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || httperr.IsUniqueViolation(err) {
			httperr.Respond(c, errDNIExists)
			return
		}
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "patient_created", "patient", &p.ID, gin.H{"dni": p.DNI}))
	httpresp.Created(c, dto.PatientFrom(p, time.Now().In(h.loc)))
}

// ======================================================
// UPDATE (DNI change cascades)
// ======================================================

func (h *PatientHandler) Update(c *gin.Context) {
	current, err := patient.NormalizeDNI(c.Param("dni"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	next := current
	if strings.TrimSpace(req.DNI) != "" {
		if next, err = patient.NormalizeDNI(req.DNI); err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	var updated *models.Patient

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		p, err := h.find(c, tx, current)
		if err != nil {
			return err
		}
		if err := req.apply(p, h.loc); err != nil {
			return err
		}

		if next != current {
			var clash int64
			if err := tx.Model(&models.Patient{}).Where("dni = ?", next).Count(&clash).Error; err != nil {
				return err
			}
			if clash > 0 {
				return errDNIExists
			}

			for _, model := range []any{&models.Appointment{}, &models.Payment{}, &models.ClinicalNote{}} {
				if err := tx.Model(model).Where("patient_dni = ?", current).Update("patient_dni", next).Error; err != nil {
					return err
				}
			}
			p.DNI = next
		}

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	meta := gin.H{"dni": updated.DNI}
	if next != current {
		meta["dni_anterior"] = current
	}
	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "patient_updated", "patient", &updated.ID, meta))

	c.JSON(http.StatusOK, dto.PatientFrom(*updated, time.Now().In(h.loc)))
}

// ======================================================
// DELETE
// ======================================================

func (h *PatientHandler) Delete(c *gin.Context) {
	dni, err := patient.NormalizeDNI(c.Param("dni"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var deleted *models.Patient

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		p, err := h.find(c, tx, dni)
		if err != nil {
			return err
		}

		var booked int64
		if err := tx.Model(&models.Appointment{}).Where("patient_dni = ?", dni).Count(&booked).Error; err != nil {
			return err
		}
		if booked > 0 {
			return errHasAppointments
		}

		deleted = p
		return tx.Delete(p).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(middleware.MustPrincipal(c), "patient_deleted", "patient", &deleted.ID, gin.H{"dni": dni}))
	c.JSON(http.StatusOK, gin.H{"mensaje": "Paciente eliminado"})
}
