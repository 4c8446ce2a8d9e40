package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/patient"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/metrics"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/notify"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Doctor     string
	Date       string
	Time       string
	PatientDNI string

	ConsultationType string
	Cost             float64
	Notes            string

	// Email receives the confirmation. Falls back to the patient's.
	Email   string
	Channel Channel
	Actor   auth.Principal
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo       domain.Repository
	audit      *audit.Dispatcher
	notifier   Notifier
	metrics    *metrics.ClinicMetrics
	loc        *time.Location
	clinicName string
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier Notifier,
	metrics *metrics.ClinicMetrics,
	loc *time.Location,
	clinicName string,
) *CreateAppointment {
	return &CreateAppointment{
		repo:       repo,
		audit:      audit,
		notifier:   notifier,
		metrics:    metrics,
		loc:        loc,
		clinicName: clinicName,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	ap, doctor, pat, err := uc.book(ctx, in)
	uc.metrics.ObserveBooking(string(in.Channel), metrics.Outcome(err))
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 8️⃣ Auditoría y confirmación, fuera de la transacción
	// --------------------------------------------------
	uc.audit.Dispatch(auditEvent(in.Actor, "appointment_created", ap.ID, map[string]any{
		"medico":  doctor.Username,
		"fecha":   ap.Date,
		"hora":    ap.Time,
		"dni":     ap.PatientDNI,
		"channel": in.Channel,
	}))

	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = pat.Email
	}
	if email != "" && uc.notifier != nil {
		name := doctor.FullName
		if name == "" {
			name = doctor.Username
		}
		uc.notifier.Enqueue(notify.BookingConfirmation(email, notify.BookingDetails{
			ClinicName: uc.clinicName,
			Doctor:     name,
			Date:       ap.Date,
			Time:       ap.Time,
			PatientDNI: ap.PatientDNI,
		}))
	}

	return ap, nil
}

func (uc *CreateAppointment) book(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, *models.User, *models.Patient, error) {

	// --------------------------------------------------
	// 1️⃣ Campos obligatorios y formatos
	// --------------------------------------------------
	if strings.TrimSpace(in.Doctor) == "" || in.Date == "" || in.Time == "" || in.PatientDNI == "" {
		return nil, nil, nil, httperr.Validation("invalid_request", "medico, fecha, hora y dni_paciente son obligatorios")
	}

	day, err := parseDate(in.Date, uc.loc)
	if err != nil {
		return nil, nil, nil, err
	}
	hm, err := parseClock(in.Time)
	if err != nil {
		return nil, nil, nil, err
	}
	dni, err := patient.NormalizeDNI(in.PatientDNI)
	if err != nil {
		return nil, nil, nil, err
	}
	if in.Cost < 0 {
		return nil, nil, nil, domain.ErrInvalidAmount
	}

	date := day.Format(timezone.DateLayout)
	weekday := agenda.WeekdayOf(day)

	var (
		created *models.Appointment
		doctor  *models.User
		pat     *models.Patient
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 2️⃣ Médico
		// --------------------------------------------------
		doctor, err = tx.FindDoctor(ctx, strings.TrimSpace(in.Doctor))
		if err != nil {
			return err
		}
		if doctor == nil {
			return domain.ErrDoctorNotFound
		}

		// --------------------------------------------------
		// 3️⃣ Bloqueos de agenda; tienen prioridad sobre la agenda semanal
		// --------------------------------------------------
		blackout, err := tx.FindActiveBlackout(ctx, doctor.ID, date)
		if err != nil {
			return err
		}
		if blackout != nil {
			return domain.ErrDoctorUnavailable(blackout.Reason)
		}

		offered, err := tx.HasTemplateSlot(ctx, doctor.ID, weekday, hm)
		if err != nil {
			return err
		}
		if !offered {
			return domain.ErrSlotNotOffered
		}

		// --------------------------------------------------
		// 4️⃣ Turno ya ocupado
		// --------------------------------------------------
		taken, err := tx.SlotTaken(ctx, doctor.ID, date, hm, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrSlotAlreadyBooked
		}

		busy, err := tx.PatientBooked(ctx, dni, date, hm, 0)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrPatientAlreadyBooked
		}

		// --------------------------------------------------
		// 5️⃣ Paciente (placeholder sólo en autogestión)
		// --------------------------------------------------
		pat, err = tx.FindPatient(ctx, dni)
		if err != nil {
			return err
		}
		if pat == nil {
			if in.Channel != ChannelPublic {
				return domain.ErrPatientNotFound
			}
			pat = models.NewPlaceholderPatient(dni, in.Email)
			if err := tx.CreatePatient(ctx, pat); err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// 6️⃣ Alta del turno; el índice único cubre la carrera
		// --------------------------------------------------
		created = &models.Appointment{
			DoctorID:         doctor.ID,
			Date:             date,
			Time:             hm,
			PatientDNI:       dni,
			Status:           string(domain.InitialStatus()),
			ConsultationType: strings.TrimSpace(in.ConsultationType),
			Cost:             in.Cost,
			Notes:            strings.TrimSpace(in.Notes),
		}
		return tx.CreateAppointment(ctx, created)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	created.Doctor = *doctor
	return created, doctor, pat, nil
}
