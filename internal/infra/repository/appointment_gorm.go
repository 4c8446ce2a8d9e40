package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(repo domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// findOne loads at most one row into dest and reports whether it existed.
func findOne(q *gorm.DB, dest any) (bool, error) {
	res := q.Limit(1).Find(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || httperr.IsUniqueViolation(err)
}

// --------------------------------------------------
// Doctor
// --------------------------------------------------

func (r *AppointmentGormRepository) FindDoctor(
	ctx context.Context,
	username string,
) (*models.User, error) {

	var doctor models.User
	ok, err := findOne(
		r.db.WithContext(ctx).
			Where("username = ? AND role = ? AND active = ?", username, models.RoleDoctor, true),
		&doctor,
	)
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &doctor, nil
}

func (r *AppointmentGormRepository) ListDoctors(
	ctx context.Context,
) ([]models.User, error) {

	var doctors []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", models.RoleDoctor, true).
		Order("full_name ASC, username ASC").
		Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// --------------------------------------------------
// Weekly template
// --------------------------------------------------

func (r *AppointmentGormRepository) ListTemplateTimes(
	ctx context.Context,
	doctorID uint,
	weekday string,
) ([]string, error) {

	var times []string
	if err := r.db.WithContext(ctx).
		Model(&models.AgendaSlot{}).
		Where("doctor_id = ? AND weekday = ?", doctorID, weekday).
		Order("time ASC").
		Pluck("time", &times).Error; err != nil {
		return nil, fmt.Errorf("list template times: %w", err)
	}
	return times, nil
}

func (r *AppointmentGormRepository) HasTemplateSlot(
	ctx context.Context,
	doctorID uint,
	weekday string,
	hm string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AgendaSlot{}).
		Where("doctor_id = ? AND weekday = ? AND time = ?", doctorID, weekday, hm).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check template slot: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) ListAgenda(
	ctx context.Context,
) ([]models.AgendaSlot, error) {

	var slots []models.AgendaSlot
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Order("doctor_id ASC, time ASC").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}
	return slots, nil
}

func (r *AppointmentGormRepository) ReplaceAgenda(
	ctx context.Context,
	doctorID uint,
	slots []models.AgendaSlot,
) error {

	if err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Delete(&models.AgendaSlot{}).Error; err != nil {
		return fmt.Errorf("clear agenda: %w", err)
	}

	if len(slots) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(&slots).Error; err != nil {
		return fmt.Errorf("insert agenda: %w", err)
	}
	return nil
}

// --------------------------------------------------
// Blackout
// --------------------------------------------------

func (r *AppointmentGormRepository) FindActiveBlackout(
	ctx context.Context,
	doctorID uint,
	date string,
) (*models.Blackout, error) {

	var b models.Blackout
	ok, err := findOne(
		r.db.WithContext(ctx).
			Where(
				"doctor_id = ? AND active = ? AND start_date <= ? AND end_date >= ?",
				doctorID, true, date, date,
			).
			Order("start_date ASC"),
		&b,
	)
	if err != nil {
		return nil, fmt.Errorf("find blackout: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *AppointmentGormRepository) CreateBlackout(
	ctx context.Context,
	b *models.Blackout,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error; err != nil {
		return fmt.Errorf("create blackout: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) ListActiveBlackouts(
	ctx context.Context,
	doctorID uint,
) ([]models.Blackout, error) {

	q := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("active = ?", true)
	if doctorID != 0 {
		q = q.Where("doctor_id = ?", doctorID)
	}

	var out []models.Blackout
	if err := q.Order("start_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	return out, nil
}

func (r *AppointmentGormRepository) DeactivateBlackout(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Blackout{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, fmt.Errorf("deactivate blackout: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// --------------------------------------------------
// Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) FindPatient(
	ctx context.Context,
	dni string,
) (*models.Patient, error) {

	var p models.Patient
	ok, err := findOne(r.db.WithContext(ctx).Where("dni = ?", dni), &p)
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *AppointmentGormRepository) CreatePatient(
	ctx context.Context,
	p *models.Patient,
) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicate(err) {
			return httperr.Conflict("dni_already_exists", "Ya existe un paciente con ese DNI")
		}
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBookedTimes(
	ctx context.Context,
	doctorID uint,
	date string,
) ([]string, error) {

	var times []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("time ASC").
		Pluck("time", &times).Error; err != nil {
		return nil, fmt.Errorf("list booked times: %w", err)
	}
	return times, nil
}

func (r *AppointmentGormRepository) SlotTaken(
	ctx context.Context,
	doctorID uint,
	date string,
	hm string,
	excludeID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND id <> ?", doctorID, date, hm, excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) PatientBooked(
	ctx context.Context,
	dni string,
	date string,
	hm string,
	excludeID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("patient_dni = ? AND date = ? AND time = ? AND id <> ?", dni, date, hm, excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check patient slot: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrSlotAlreadyBooked
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) FindAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	ok, err := findOne(
		r.db.WithContext(ctx).Preload("Doctor").Where("id = ?", id),
		&ap,
	)
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) FindAppointmentByKey(
	ctx context.Context,
	key domain.Key,
) (*models.Appointment, error) {

	var ap models.Appointment
	ok, err := findOne(
		r.db.WithContext(ctx).
			Preload("Doctor").
			Where("patient_dni = ? AND date = ? AND time = ?", key.PatientDNI, key.Date, key.Time).
			Order("id ASC"),
		&ap,
	)
	if err != nil {
		return nil, fmt.Errorf("find appointment by key: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrSlotAlreadyBooked
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) AdvanceStatus(
	ctx context.Context,
	id uint,
	from []domain.Status,
	to domain.Status,
	paid bool,
) (bool, error) {

	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	updates := map[string]any{"status": string(to)}
	if paid {
		updates["paid"] = true
	}

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("advance status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	id uint,
) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient")

	if filter.DoctorID != 0 {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var out []models.Appointment
	if err := q.Order("date ASC, time ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}
