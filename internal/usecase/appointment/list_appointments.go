package appointment

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/dto"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

type ListAppointmentsInput struct {
	// Doctor filters by username. Unknown doctors yield an empty list.
	Doctor string
	Date   string
	From   string
	To     string
	Status string
}

type ListAppointments struct {
	repo domain.Repository
	loc  *time.Location
}

func NewListAppointments(
	repo domain.Repository,
	loc *time.Location,
) *ListAppointments {
	return &ListAppointments{repo: repo, loc: loc}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]dto.AppointmentListDTO, error) {

	filter := domain.ListFilter{Status: domain.Status(strings.TrimSpace(in.Status))}

	for _, f := range []struct {
		raw string
		dst *string
	}{
		{in.Date, &filter.Date},
		{in.From, &filter.From},
		{in.To, &filter.To},
	} {
		if f.raw == "" {
			continue
		}
		d, err := parseDate(f.raw, uc.loc)
		if err != nil {
			return nil, err
		}
		*f.dst = d.Format(timezone.DateLayout)
	}

	if name := strings.TrimSpace(in.Doctor); name != "" {
		doctor, err := uc.repo.FindDoctor(ctx, name)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return []dto.AppointmentListDTO{}, nil
		}
		filter.DoctorID = doctor.ID
	}

	appointments, err := uc.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentFrom(ap))
	}
	return out, nil
}

// Day lists one date, today in the clinic timezone when date is empty.
func (uc *ListAppointments) Day(
	ctx context.Context,
	doctor string,
	date string,
) ([]dto.AppointmentListDTO, error) {
	if date == "" {
		date = timezone.Today(uc.loc)
	}
	return uc.Execute(ctx, ListAppointmentsInput{Doctor: doctor, Date: date})
}
