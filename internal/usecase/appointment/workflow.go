package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/metrics"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// advance applies ev to the appointment at key with a guarded update.
// A request that loses the race sees invalid_state_transition.
func advance(
	ctx context.Context,
	repo domain.Repository,
	key domain.Key,
	ev domain.Event,
) (*models.Appointment, error) {

	ap, err := repo.FindAppointmentByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if ap == nil {
		return nil, domain.ErrAppointmentNotFound
	}

	current := domain.Status(ap.Status)
	next, err := domain.Next(current, ev)
	if err != nil {
		return nil, err
	}
	if next == current {
		return ap, nil
	}

	paid := ev == domain.EventCollectPayment
	ok, err := repo.AdvanceStatus(ctx, ap.ID, domain.AllowedFrom(ev), next, paid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidStateTransition
	}

	if err := domain.Apply(ap, ev); err != nil {
		return nil, err
	}
	return ap, nil
}

// ======================================================
// CHECK-IN
// ======================================================

type CheckIn struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.ClinicMetrics
	loc     *time.Location
}

func NewCheckIn(
	repo domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.ClinicMetrics,
	loc *time.Location,
) *CheckIn {
	return &CheckIn{repo: repo, audit: audit, metrics: metrics, loc: loc}
}

// Execute marks the patient as arrived. Repeating it is a no-op.
func (uc *CheckIn) Execute(
	ctx context.Context,
	key domain.Key,
	actor auth.Principal,
) (*models.Appointment, error) {

	ap, err := uc.run(ctx, key)
	uc.metrics.ObserveTransition(string(domain.EventCheckIn), metrics.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(actor, "appointment_checked_in", ap.ID, nil))
	return ap, nil
}

func (uc *CheckIn) run(ctx context.Context, key domain.Key) (*models.Appointment, error) {
	k, err := normalizeKey(key, uc.loc)
	if err != nil {
		return nil, err
	}
	return advance(ctx, uc.repo, k, domain.EventCheckIn)
}

// ======================================================
// COLLECT PAYMENT
// ======================================================

type CollectPaymentInput struct {
	Key    domain.Key
	Amount float64
	Method string
	Notes  string
	Actor  auth.Principal
}

type CollectPaymentOutput struct {
	Appointment *models.Appointment
	Payment     *models.Payment
}

type CollectPayment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.ClinicMetrics
	loc     *time.Location
}

func NewCollectPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.ClinicMetrics,
	loc *time.Location,
) *CollectPayment {
	return &CollectPayment{repo: repo, audit: audit, metrics: metrics, loc: loc}
}

// Execute records the payment and sends the patient to the waiting room
// in one transaction.
func (uc *CollectPayment) Execute(
	ctx context.Context,
	in CollectPaymentInput,
) (*CollectPaymentOutput, error) {

	out, err := uc.run(ctx, in)
	uc.metrics.ObserveTransition(string(domain.EventCollectPayment), metrics.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(in.Actor, "payment_collected", out.Appointment.ID, map[string]any{
		"monto":     out.Payment.Amount,
		"tipo_pago": out.Payment.Method,
	}))
	return out, nil
}

func (uc *CollectPayment) run(
	ctx context.Context,
	in CollectPaymentInput,
) (*CollectPaymentOutput, error) {

	// --------------------------------------------------
	// 1️⃣ Clave y forma de pago
	// --------------------------------------------------
	key, err := normalizeKey(in.Key, uc.loc)
	if err != nil {
		return nil, err
	}

	method, err := domain.PaymentMethodFor(in.Amount, in.Method)
	if err != nil {
		return nil, err
	}

	out := &CollectPaymentOutput{}

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 2️⃣ recepcionado -> sala de espera
		// --------------------------------------------------
		ap, err := advance(ctx, tx, key, domain.EventCollectPayment)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 3️⃣ Registro del pago
		// --------------------------------------------------
		pat, err := tx.FindPatient(ctx, ap.PatientDNI)
		if err != nil {
			return err
		}
		if pat == nil {
			return domain.ErrPatientNotFound
		}

		payment := &models.Payment{
			PatientDNI: ap.PatientDNI,
			Amount:     in.Amount,
			Date:       ap.Date,
			Method:     method,
			Insurer:    pat.Insurer,
			Notes:      in.Notes,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		out.Appointment = ap
		out.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ======================================================
// DOCTOR STATUS (llamado / atendido / ausente)
// ======================================================

type UpdateStatus struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.ClinicMetrics
	loc     *time.Location
}

func NewUpdateStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.ClinicMetrics,
	loc *time.Location,
) *UpdateStatus {
	return &UpdateStatus{repo: repo, audit: audit, metrics: metrics, loc: loc}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	key domain.Key,
	target string,
	actor auth.Principal,
) (*models.Appointment, error) {

	ev, err := domain.EventForTarget(target)
	if err != nil {
		return nil, err
	}

	ap, err := uc.run(ctx, key, ev)
	uc.metrics.ObserveTransition(string(ev), metrics.Outcome(err))
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(auditEvent(actor, "appointment_status_changed", ap.ID, map[string]any{
		"estado": ap.Status,
	}))
	return ap, nil
}

func (uc *UpdateStatus) run(
	ctx context.Context,
	key domain.Key,
	ev domain.Event,
) (*models.Appointment, error) {
	k, err := normalizeKey(key, uc.loc)
	if err != nil {
		return nil, err
	}
	return advance(ctx, uc.repo, k, ev)
}
