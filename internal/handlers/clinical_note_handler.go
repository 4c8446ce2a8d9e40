package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/patient"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/httpresp"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

// ClinicalNoteHandler keeps the append-only medical history.
type ClinicalNoteHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewClinicalNoteHandler(db *gorm.DB, audit *audit.Dispatcher, loc *time.Location) *ClinicalNoteHandler {
	return &ClinicalNoteHandler{db: db, audit: audit, loc: loc}
}

type CreateNoteRequest struct {
	DNI              string `json:"dni" binding:"required"`
	Note             string `json:"consulta_medica" binding:"required"`
	ConsultationDate string `json:"fecha_consulta"`
}

type NoteRow struct {
	ID               uint   `json:"id"`
	DNI              string `json:"dni"`
	Patient          string `json:"paciente"`
	Doctor           string `json:"medico"`
	DoctorName       string `json:"medico_nombre"`
	Note             string `json:"consulta_medica"`
	ConsultationDate string `json:"fecha_consulta"`
}

func noteRow(n models.ClinicalNote) NoteRow {
	row := NoteRow{
		ID:               n.ID,
		DNI:              n.PatientDNI,
		Doctor:           n.Doctor.Username,
		DoctorName:       n.Doctor.FullName,
		Note:             n.Note,
		ConsultationDate: n.ConsultationDate,
	}
	if n.Patient != nil {
		row.Patient = strings.TrimSpace(n.Patient.LastName + ", " + n.Patient.FirstName)
	}
	return row
}

// Create records a note authored by the calling doctor. Unknown DNIs get a
// placeholder patient.
func (h *ClinicalNoteHandler) Create(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Respond(c, invalidBody(err))
		return
	}

	dni, err := patient.NormalizeDNI(req.DNI)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	date := timezone.Today(h.loc)
	if raw := strings.TrimSpace(req.ConsultationDate); raw != "" {
		d, err := timezone.ParseDate(raw, h.loc)
		if err != nil {
			httperr.Respond(c, domain.ErrInvalidDate)
			return
		}
		date = d.Format(timezone.DateLayout)
	}

	p := middleware.MustPrincipal(c)
	note := models.ClinicalNote{
		PatientDNI:       dni,
		DoctorID:         p.UserID,
		Note:             strings.TrimSpace(req.Note),
		ConsultationDate: date,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Patient{}).Where("dni = ?", dni).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(models.NewPlaceholderPatient(dni, "")).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Patient", "Doctor").Create(&note).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(p, "clinical_note_created", "clinical_note", &note.ID, gin.H{"dni": dni}))
	httpresp.Created(c, gin.H{"id": note.ID, "dni": dni, "fecha_consulta": date})
}

func (h *ClinicalNoteHandler) ByPatient(c *gin.Context) {
	dni, err := patient.NormalizeDNI(c.Param("dni"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var notes []models.ClinicalNote
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Doctor").
		Preload("Patient").
		Where("patient_dni = ?", dni).
		Order("consultation_date DESC, id DESC").
		Find(&notes).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]NoteRow, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteRow(n))
	}
	httpresp.List(c, out)
}

// Search pages through every note, optionally filtered by DNI or text.
func (h *ClinicalNoteHandler) Search(c *gin.Context) {
	page, limit, offset := httpresp.Paging(c, 20, 100)

	q := h.db.WithContext(c.Request.Context()).Model(&models.ClinicalNote{})
	if term := strings.ToLower(strings.TrimSpace(c.Query("q"))); term != "" {
		like := "%" + term + "%"
		q = q.Where("patient_dni LIKE ? OR LOWER(note) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var notes []models.ClinicalNote
	if err := q.
		Preload("Doctor").
		Preload("Patient").
		Order("consultation_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notes).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]NoteRow, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteRow(n))
	}
	httpresp.Page(c, out, total, page, limit)
}
