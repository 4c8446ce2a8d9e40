package blackout

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/dto"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

type CreateInput struct {
	Doctor    string
	StartDate string
	EndDate   string
	Reason    string
	Actor     auth.Principal
}

// Manager creates, lists and deactivates doctor blackouts. Overlapping
// ranges are allowed; any active one blocks the day.
type Manager struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewManager(repo domain.Repository, audit *audit.Dispatcher, loc *time.Location) *Manager {
	return &Manager{repo: repo, audit: audit, loc: loc}
}

func (m *Manager) Create(ctx context.Context, in CreateInput) (*dto.BlackoutDTO, error) {
	if strings.TrimSpace(in.Doctor) == "" || in.StartDate == "" || in.EndDate == "" {
		return nil, httperr.Validation("invalid_request", "medico, fecha_inicio y fecha_fin son obligatorios")
	}

	start, err := timezone.ParseDate(strings.TrimSpace(in.StartDate), m.loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	end, err := timezone.ParseDate(strings.TrimSpace(in.EndDate), m.loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	doctor, err := m.repo.FindDoctor(ctx, strings.TrimSpace(in.Doctor))
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, domain.ErrDoctorNotFound
	}

	b := &models.Blackout{
		DoctorID:  doctor.ID,
		StartDate: start.Format(timezone.DateLayout),
		EndDate:   end.Format(timezone.DateLayout),
		Reason:    strings.TrimSpace(in.Reason),
		Active:    true,
	}
	if in.Actor.UserID != 0 {
		uid := in.Actor.UserID
		b.CreatedBy = &uid
	}
	if err := m.repo.CreateBlackout(ctx, b); err != nil {
		return nil, err
	}
	b.Doctor = *doctor

	m.dispatch(in.Actor, "blackout_created", b.ID, map[string]any{
		"medico":       doctor.Username,
		"fecha_inicio": b.StartDate,
		"fecha_fin":    b.EndDate,
	})

	out := dto.BlackoutFrom(*b)
	return &out, nil
}

// List returns active blackouts, all doctors when doctor is empty.
func (m *Manager) List(ctx context.Context, doctor string) ([]dto.BlackoutDTO, error) {
	var doctorID uint
	if name := strings.TrimSpace(doctor); name != "" {
		d, err := m.repo.FindDoctor(ctx, name)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return []dto.BlackoutDTO{}, nil
		}
		doctorID = d.ID
	}

	rows, err := m.repo.ListActiveBlackouts(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BlackoutDTO, 0, len(rows))
	for _, b := range rows {
		out = append(out, dto.BlackoutFrom(b))
	}
	return out, nil
}

// Deactivate soft-deletes a blackout. A second call reports not found.
func (m *Manager) Deactivate(ctx context.Context, id uint, actor auth.Principal) error {
	ok, err := m.repo.DeactivateBlackout(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBlackoutNotFound
	}

	m.dispatch(actor, "blackout_deactivated", id, nil)
	return nil
}

func (m *Manager) dispatch(actor auth.Principal, action string, id uint, meta any) {
	ev := audit.Event{
		Username: actor.Username,
		Action:   action,
		Entity:   "blackout",
		EntityID: &id,
		Metadata: meta,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		ev.UserID = &uid
	}
	m.audit.Dispatch(ev)
}
