package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
	loc  *time.Location
}

func NewGetAvailability(repo domain.Repository, loc *time.Location) *GetAvailability {
	return &GetAvailability{repo: repo, loc: loc}
}

// Execute resolves the open times of one doctor on one date. A blackout
// empties the day and is reported through Blocked and Reason.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.Availability, error) {

	day, err := parseDate(in.Date, uc.loc)
	if err != nil {
		return nil, err
	}

	out := &domain.Availability{
		Doctor:  in.Doctor,
		Date:    day.Format(timezone.DateLayout),
		Weekday: agenda.WeekdayOf(day),
		Slots:   []string{},
	}

	doctor, err := uc.repo.FindDoctor(ctx, in.Doctor)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return out, nil
	}

	blackout, err := uc.repo.FindActiveBlackout(ctx, doctor.ID, out.Date)
	if err != nil {
		return nil, err
	}
	if blackout != nil {
		out.Blocked = true
		out.Reason = blackout.Reason
		return out, nil
	}

	template, err := uc.repo.ListTemplateTimes(ctx, doctor.ID, out.Weekday)
	if err != nil {
		return nil, err
	}

	booked, err := uc.repo.ListBookedTimes(ctx, doctor.ID, out.Date)
	if err != nil {
		return nil, err
	}

	out.Slots = domain.FreeSlots(template, booked)
	return out, nil
}
