package agenda

import (
	"context"
	"sort"
	"strings"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	weekdays "github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

// Week maps each weekday to its sorted times.
type Week map[string][]string

func emptyWeek() Week {
	w := make(Week, len(weekdays.Weekdays))
	for _, d := range weekdays.Weekdays {
		w[d] = []string{}
	}
	return w
}

// ======================================================
// GET
// ======================================================

type GetAgenda struct {
	repo domain.Repository
}

func NewGetAgenda(repo domain.Repository) *GetAgenda {
	return &GetAgenda{repo: repo}
}

// Execute returns every active doctor's template keyed by username. Days
// without slots are present and empty.
func (uc *GetAgenda) Execute(ctx context.Context) (map[string]Week, error) {
	doctors, err := uc.repo.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Week, len(doctors))
	for _, d := range doctors {
		out[d.Username] = emptyWeek()
	}

	slots, err := uc.repo.ListAgenda(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range slots {
		week, ok := out[s.Doctor.Username]
		if !ok {
			// inactive doctors keep their rows but are not offered
			continue
		}
		week[s.Weekday] = append(week[s.Weekday], s.Time)
	}

	for _, week := range out {
		for _, times := range week {
			sort.Strings(times)
		}
	}
	return out, nil
}

// ======================================================
// REPLACE
// ======================================================

type ReplaceAgenda struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewReplaceAgenda(repo domain.Repository, audit *audit.Dispatcher) *ReplaceAgenda {
	return &ReplaceAgenda{repo: repo, audit: audit}
}

// Execute swaps the doctor's whole weekly template for body. Weekdays
// missing from body end up empty.
func (uc *ReplaceAgenda) Execute(
	ctx context.Context,
	doctor string,
	body map[string][]string,
	actor auth.Principal,
) (Week, error) {

	// --------------------------------------------------
	// 1️⃣ Normalizar días y horarios
	// --------------------------------------------------
	week, err := Normalize(body)
	if err != nil {
		return nil, err
	}

	var doctorID uint

	// --------------------------------------------------
	// 2️⃣ Borrar e insertar en una sola transacción
	// --------------------------------------------------
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		d, err := tx.FindDoctor(ctx, strings.TrimSpace(doctor))
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrDoctorNotFound
		}
		doctorID = d.ID

		slots := make([]models.AgendaSlot, 0)
		for _, day := range weekdays.Weekdays {
			for _, hm := range week[day] {
				slots = append(slots, models.AgendaSlot{DoctorID: d.ID, Weekday: day, Time: hm})
			}
		}
		return tx.ReplaceAgenda(ctx, d.ID, slots)
	})
	if err != nil {
		return nil, err
	}

	ev := audit.Event{
		Username: actor.Username,
		Action:   "agenda_replaced",
		Entity:   "agenda",
		EntityID: &doctorID,
		Metadata: week,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		ev.UserID = &uid
	}
	uc.audit.Dispatch(ev)

	return week, nil
}

// Normalize canonicalizes weekday names and times, dropping duplicates.
func Normalize(body map[string][]string) (Week, error) {
	week := emptyWeek()

	for name, times := range body {
		day, ok := weekdays.NormalizeWeekday(name)
		if !ok {
			return nil, weekdays.ErrInvalidWeekday
		}

		seen := make(map[string]struct{}, len(week[day])+len(times))
		for _, hm := range week[day] {
			seen[hm] = struct{}{}
		}
		for _, raw := range times {
			hm, err := timezone.NormalizeClock(strings.TrimSpace(raw))
			if err != nil {
				return nil, domain.ErrInvalidTime
			}
			if _, dup := seen[hm]; dup {
				continue
			}
			seen[hm] = struct{}{}
			week[day] = append(week[day], hm)
		}
		sort.Strings(week[day])
	}
	return week, nil
}
