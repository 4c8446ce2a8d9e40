package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

type RescheduleInput struct {
	Key domain.Key

	NewDate string
	NewTime string
	// Doctor moves the booking to another doctor when set.
	Doctor string

	Actor auth.Principal
}

type Reschedule struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewReschedule(
	repo domain.Repository,
	audit *audit.Dispatcher,
	loc *time.Location,
) *Reschedule {
	return &Reschedule{repo: repo, audit: audit, loc: loc}
}

// Execute moves an appointment to a new date and time. The target goes
// through the same template, blackout and occupancy checks as a booking,
// ignoring the appointment being moved.
func (uc *Reschedule) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Appointment, error) {

	key, err := normalizeKey(in.Key, uc.loc)
	if err != nil {
		return nil, err
	}

	day, err := parseDate(in.NewDate, uc.loc)
	if err != nil {
		return nil, err
	}
	hm, err := parseClock(in.NewTime)
	if err != nil {
		return nil, err
	}
	date := day.Format(timezone.DateLayout)

	var (
		ap       *models.Appointment
		previous domain.Key
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		ap, err = tx.FindAppointmentByKey(ctx, key)
		if err != nil {
			return err
		}
		if ap == nil {
			return domain.ErrAppointmentNotFound
		}
		previous = domain.Key{PatientDNI: ap.PatientDNI, Date: ap.Date, Time: ap.Time}

		doctor := &ap.Doctor
		if name := strings.TrimSpace(in.Doctor); name != "" && name != ap.Doctor.Username {
			doctor, err = tx.FindDoctor(ctx, name)
			if err != nil {
				return err
			}
			if doctor == nil {
				return domain.ErrDoctorNotFound
			}
		}

		blackout, err := tx.FindActiveBlackout(ctx, doctor.ID, date)
		if err != nil {
			return err
		}
		if blackout != nil {
			return domain.ErrDoctorUnavailable(blackout.Reason)
		}

		offered, err := tx.HasTemplateSlot(ctx, doctor.ID, agenda.WeekdayOf(day), hm)
		if err != nil {
			return err
		}
		if !offered {
			return domain.ErrSlotNotOffered
		}

		taken, err := tx.SlotTaken(ctx, doctor.ID, date, hm, ap.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrSlotAlreadyBooked
		}

		busy, err := tx.PatientBooked(ctx, ap.PatientDNI, date, hm, ap.ID)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrPatientAlreadyBooked
		}

		ap.DoctorID = doctor.ID
		ap.Doctor = *doctor
		ap.Date = date
		ap.Time = hm
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(in.Actor, "appointment_rescheduled", ap.ID, map[string]any{
		"desde": previous.Date + " " + previous.Time,
		"hasta": ap.Date + " " + ap.Time,
	}))
	return ap, nil
}
