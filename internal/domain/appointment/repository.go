package appointment

import (
	"context"

	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// ListFilter narrows appointment listings. Zero values do not filter.
type ListFilter struct {
	DoctorID uint
	Date     string
	From     string
	To       string
	Status   Status
}

// Repository is the persistence port of the scheduling core. Find*
// methods return (nil, nil) when nothing matches.
type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction.
	Transaction(
		ctx context.Context,
		fn func(repo Repository) error,
	) error

	// -------- Doctor --------
	FindDoctor(
		ctx context.Context,
		username string,
	) (*models.User, error)

	ListDoctors(
		ctx context.Context,
	) ([]models.User, error)

	// -------- Weekly template --------
	ListTemplateTimes(
		ctx context.Context,
		doctorID uint,
		weekday string,
	) ([]string, error)

	HasTemplateSlot(
		ctx context.Context,
		doctorID uint,
		weekday string,
		hm string,
	) (bool, error)

	ListAgenda(
		ctx context.Context,
	) ([]models.AgendaSlot, error)

	ReplaceAgenda(
		ctx context.Context,
		doctorID uint,
		slots []models.AgendaSlot,
	) error

	// -------- Blackout --------
	FindActiveBlackout(
		ctx context.Context,
		doctorID uint,
		date string,
	) (*models.Blackout, error)

	CreateBlackout(
		ctx context.Context,
		b *models.Blackout,
	) error

	ListActiveBlackouts(
		ctx context.Context,
		doctorID uint,
	) ([]models.Blackout, error)

	DeactivateBlackout(
		ctx context.Context,
		id uint,
	) (bool, error)

	// -------- Patient --------
	FindPatient(
		ctx context.Context,
		dni string,
	) (*models.Patient, error)

	CreatePatient(
		ctx context.Context,
		p *models.Patient,
	) error

	// -------- Appointment --------
	ListBookedTimes(
		ctx context.Context,
		doctorID uint,
		date string,
	) ([]string, error)

	SlotTaken(
		ctx context.Context,
		doctorID uint,
		date string,
		hm string,
		excludeID uint,
	) (bool, error)

	// PatientBooked reports whether dni already holds an appointment at
	// date and hm with any doctor. Key-based lookups rely on it.
	PatientBooked(
		ctx context.Context,
		dni string,
		date string,
		hm string,
		excludeID uint,
	) (bool, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	FindAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	FindAppointmentByKey(
		ctx context.Context,
		key Key,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// AdvanceStatus updates the status only while it is still one of
	// from, returning false when another request got there first.
	AdvanceStatus(
		ctx context.Context,
		id uint,
		from []Status,
		to Status,
		paid bool,
	) (bool, error)

	DeleteAppointment(
		ctx context.Context,
		id uint,
	) error

	ListAppointments(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Appointment, error)

	// -------- Payment --------
	CreatePayment(
		ctx context.Context,
		p *models.Payment,
	) error
}
