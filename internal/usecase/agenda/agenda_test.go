package agenda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/db/dbtest"
	weekdays "github.com/BruksfildServices01/consultorio-api/internal/domain/agenda"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/infra/repository"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

var admin = auth.Principal{UserID: 1, Username: "admin", Role: models.RoleAdmin}

func TestReplaceThenGetShowsOnlyNewTemplate(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)
	ctx := context.Background()

	doc := dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)
	dbtest.SeedSlots(t, gdb, doc.ID, "MARTES", "15:00", "15:30")
	dbtest.SeedSlots(t, gdb, doc.ID, "LUNES", "09:00")

	_, err := NewReplaceAgenda(repo, nil).Execute(ctx, "dra_gomez", map[string][]string{
		"LUNES": {"08:00"},
	}, admin)
	require.NoError(t, err)

	got, err := NewGetAgenda(repo).Execute(ctx)
	require.NoError(t, err)
	require.Contains(t, got, "dra_gomez")

	week := got["dra_gomez"]
	assert.Equal(t, []string{"08:00"}, week["LUNES"])
	assert.Empty(t, week["MARTES"])
	assert.Len(t, week, 7)
}

func TestReplaceNormalizesNamesAndTimes(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)
	ctx := context.Background()
	dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)

	week, err := NewReplaceAgenda(repo, nil).Execute(ctx, "dra_gomez", map[string][]string{
		"miércoles": {"10:30", "9:00", "10:30"},
		"Sábado":    {"08:00"},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:30"}, week["MIERCOLES"])
	assert.Equal(t, []string{"08:00"}, week["SABADO"])

	got, err := NewGetAgenda(repo).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:30"}, got["dra_gomez"]["MIERCOLES"])
}

func TestReplaceRejectsBadInput(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)
	ctx := context.Background()
	doc := dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)
	dbtest.SeedSlots(t, gdb, doc.ID, "LUNES", "09:00")

	uc := NewReplaceAgenda(repo, nil)

	_, err := uc.Execute(ctx, "dra_gomez", map[string][]string{"FUNDAY": {"09:00"}}, admin)
	assert.ErrorIs(t, err, weekdays.ErrInvalidWeekday)

	_, err = uc.Execute(ctx, "dra_gomez", map[string][]string{"LUNES": {"25:00"}}, admin)
	assert.ErrorIs(t, err, domain.ErrInvalidTime)

	_, err = uc.Execute(ctx, "dr_nadie", map[string][]string{"LUNES": {"09:00"}}, admin)
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)

	// failed replaces leave the old template alone
	times, err := repo.ListTemplateTimes(ctx, doc.ID, "LUNES")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, times)
}
