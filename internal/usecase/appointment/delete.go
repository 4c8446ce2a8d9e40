package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
)

// DeleteAppointment removes a booking and frees its slot.
type DeleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	loc *time.Location,
) *DeleteAppointment {
	return &DeleteAppointment{repo: repo, audit: audit, loc: loc}
}

func (uc *DeleteAppointment) ByID(
	ctx context.Context,
	id uint,
	actor auth.Principal,
) error {

	if err := uc.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	uc.audit.Dispatch(auditEvent(actor, "appointment_deleted", id, nil))
	return nil
}

func (uc *DeleteAppointment) ByKey(
	ctx context.Context,
	key domain.Key,
	actor auth.Principal,
) error {

	k, err := normalizeKey(key, uc.loc)
	if err != nil {
		return err
	}

	ap, err := uc.repo.FindAppointmentByKey(ctx, k)
	if err != nil {
		return err
	}
	if ap == nil {
		return domain.ErrAppointmentNotFound
	}

	return uc.ByID(ctx, ap.ID, actor)
}
