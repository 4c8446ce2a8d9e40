// Package reports aggregates appointments for the admin dashboards.
package reports

import (
	"math"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

// MaxRangeDays bounds report ranges.
const MaxRangeDays = 366

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// ======================================================
// APPOINTMENT OUTCOMES
// ======================================================

type Counts struct {
	Total       int     `json:"total"`
	Attended    int     `json:"atendidos"`
	Absent      int     `json:"ausentes"`
	Pending     int     `json:"pendientes"`
	AttendedPct float64 `json:"porcentaje_atendidos"`
	AbsentPct   float64 `json:"porcentaje_ausentes"`
}

func (c *Counts) add(status string) {
	c.Total++
	switch domain.Status(status) {
	case domain.StatusSeen:
		c.Attended++
	case domain.StatusAbsent:
		c.Absent++
	default:
		c.Pending++
	}
	c.AttendedPct = pct(c.Attended, c.Total)
	c.AbsentPct = pct(c.Absent, c.Total)
}

type AppointmentsReport struct {
	From     string             `json:"desde"`
	To       string             `json:"hasta"`
	Totals   Counts             `json:"totales"`
	ByDoctor map[string]*Counts `json:"por_medico"`
	ByDay    map[string]*Counts `json:"por_dia"`
}

// SummarizeAppointments expects appointments with their doctor preloaded.
func SummarizeAppointments(from, to string, apps []models.Appointment) AppointmentsReport {
	r := AppointmentsReport{
		From:     from,
		To:       to,
		ByDoctor: map[string]*Counts{},
		ByDay:    map[string]*Counts{},
	}

	for _, ap := range apps {
		r.Totals.add(ap.Status)

		doc := r.ByDoctor[ap.Doctor.Username]
		if doc == nil {
			doc = &Counts{}
			r.ByDoctor[ap.Doctor.Username] = doc
		}
		doc.add(ap.Status)

		day := r.ByDay[ap.Date]
		if day == nil {
			day = &Counts{}
			r.ByDay[ap.Date] = day
		}
		day.add(ap.Status)
	}
	return r
}

// ======================================================
// OCCUPANCY
// ======================================================

type Occupancy struct {
	Offered int     `json:"ofrecidos"`
	Booked  int     `json:"reservados"`
	Rate    float64 `json:"porcentaje_ocupacion"`
}

func (o *Occupancy) add(offered, booked int) {
	o.Offered += offered
	o.Booked += booked
	o.Rate = pct(o.Booked, o.Offered)
}

type OccupancyReport struct {
	From     string                `json:"desde"`
	To       string                `json:"hasta"`
	Totals   Occupancy             `json:"totales"`
	ByDoctor map[string]*Occupancy `json:"por_medico"`
	ByDay    map[string]*Occupancy `json:"por_dia"`
}

type OccupancyInput struct {
	From, To  time.Time
	Doctors   []models.User
	Template  []models.AgendaSlot
	Blackouts []models.Blackout
	Booked    []models.Appointment
}

// ComputeOccupancy compares template slots with bookings for every day in
// the range. Blacked-out days offer nothing.
func ComputeOccupancy(in OccupancyInput) OccupancyReport {
	r := OccupancyReport{
		From:     in.From.Format(timezone.DateLayout),
		To:       in.To.Format(timezone.DateLayout),
		ByDoctor: map[string]*Occupancy{},
		ByDay:    map[string]*Occupancy{},
	}

	// doctor -> weekday -> slots
	offered := map[uint]map[string]int{}
	for _, s := range in.Template {
		if offered[s.DoctorID] == nil {
			offered[s.DoctorID] = map[string]int{}
		}
		offered[s.DoctorID][s.Weekday]++
	}

	type cell struct {
		doctor uint
		date   string
	}
	booked := map[cell]int{}
	for _, ap := range in.Booked {
		booked[cell{ap.DoctorID, ap.Date}]++
	}

	blocked := func(doctorID uint, date string) bool {
		for _, b := range in.Blackouts {
			if b.DoctorID == doctorID && b.Active && b.StartDate <= date && date <= b.EndDate {
				return true
			}
		}
		return false
	}

	for _, day := range Days(in.From, in.To) {
		date := day.Format(timezone.DateLayout)
		weekday := agenda.WeekdayOf(day)

		for _, doc := range in.Doctors {
			o := offered[doc.ID][weekday]
			if blocked(doc.ID, date) {
				o = 0
			}
			b := booked[cell{doc.ID, date}]
			if o == 0 && b == 0 {
				continue
			}

			r.Totals.add(o, b)

			byDoc := r.ByDoctor[doc.Username]
			if byDoc == nil {
				byDoc = &Occupancy{}
				r.ByDoctor[doc.Username] = byDoc
			}
			byDoc.add(o, b)

			byDay := r.ByDay[date]
			if byDay == nil {
				byDay = &Occupancy{}
				r.ByDay[date] = byDay
			}
			byDay.add(o, b)
		}
	}
	return r
}

// Days lists every calendar day from..to inclusive, capped at
// MaxRangeDays.
func Days(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to) && len(out) < MaxRangeDays; d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
