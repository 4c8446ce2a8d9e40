package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

func TestSummarizeAppointments(t *testing.T) {
	gomez := models.User{ID: 1, Username: "dra_gomez"}
	ruiz := models.User{ID: 2, Username: "dr_ruiz"}

	r := SummarizeAppointments("2024-06-01", "2024-06-30", []models.Appointment{
		{Doctor: gomez, Date: "2024-06-03", Status: "atendido"},
		{Doctor: gomez, Date: "2024-06-03", Status: "ausente"},
		{Doctor: gomez, Date: "2024-06-04", Status: "atendido"},
		{Doctor: ruiz, Date: "2024-06-04", Status: "sin atender"},
	})

	assert.Equal(t, 4, r.Totals.Total)
	assert.Equal(t, 2, r.Totals.Attended)
	assert.Equal(t, 1, r.Totals.Absent)
	assert.Equal(t, 1, r.Totals.Pending)
	assert.Equal(t, 50.0, r.Totals.AttendedPct)
	assert.Equal(t, 25.0, r.Totals.AbsentPct)

	require.Contains(t, r.ByDoctor, "dra_gomez")
	assert.Equal(t, 3, r.ByDoctor["dra_gomez"].Total)
	assert.Equal(t, 66.7, r.ByDoctor["dra_gomez"].AttendedPct)
	assert.Equal(t, 2, r.ByDay["2024-06-04"].Total)
}

func TestComputeOccupancyHonoursBlackouts(t *testing.T) {
	loc := time.UTC
	gomez := models.User{ID: 1, Username: "dra_gomez"}

	r := ComputeOccupancy(OccupancyInput{
		// Monday 3 to Monday 10
		From:    time.Date(2024, 6, 3, 0, 0, 0, 0, loc),
		To:      time.Date(2024, 6, 10, 0, 0, 0, 0, loc),
		Doctors: []models.User{gomez},
		Template: []models.AgendaSlot{
			{DoctorID: 1, Weekday: "LUNES", Time: "09:00"},
			{DoctorID: 1, Weekday: "LUNES", Time: "09:30"},
		},
		Blackouts: []models.Blackout{
			{DoctorID: 1, StartDate: "2024-06-10", EndDate: "2024-06-10", Active: true},
		},
		Booked: []models.Appointment{
			{DoctorID: 1, Date: "2024-06-03", Time: "09:00"},
		},
	})

	assert.Equal(t, 2, r.Totals.Offered)
	assert.Equal(t, 1, r.Totals.Booked)
	assert.Equal(t, 50.0, r.Totals.Rate)
	assert.Len(t, r.ByDay, 1)
	assert.Equal(t, 50.0, r.ByDoctor["dra_gomez"].Rate)
}

func TestDaysIsInclusiveAndCapped(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Len(t, Days(from, from), 1)
	assert.Len(t, Days(from, from.AddDate(0, 0, 6)), 7)
	assert.Len(t, Days(from, from.AddDate(5, 0, 0)), MaxRangeDays)
	assert.Empty(t, Days(from, from.AddDate(0, 0, -1)))
}
