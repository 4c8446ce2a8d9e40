package appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/db/dbtest"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/infra/repository"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/notify"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
}

func (n *recordingNotifier) Enqueue(msg notify.EmailMessage) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

type fixture struct {
	db     *gorm.DB
	repo   *repository.AppointmentGormRepository
	doctor *models.User
	loc    *time.Location
	notify *recordingNotifier
}

// newFixture seeds dra_gomez with Monday 09:00 and 09:30, Wednesday 10:00
// and patient 40111222.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.Open(t)
	doc := dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)
	dbtest.SeedSlots(t, gdb, doc.ID, "LUNES", "09:00", "09:30")
	dbtest.SeedSlots(t, gdb, doc.ID, "MIERCOLES", "10:00")
	dbtest.SeedPatient(t, gdb, "40111222")

	return &fixture{
		db:     gdb,
		repo:   repository.NewAppointmentGormRepository(gdb),
		doctor: doc,
		loc:    timezone.Location(timezone.DefaultTimezone),
		notify: &recordingNotifier{},
	}
}

func (f *fixture) create() *CreateAppointment {
	return NewCreateAppointment(f.repo, nil, f.notify, nil, f.loc, "Consultorio")
}

func (f *fixture) book(t *testing.T, date, hm, dni string) *models.Appointment {
	t.Helper()
	ap, err := f.create().Execute(context.Background(), CreateAppointmentInput{
		Doctor: "dra_gomez", Date: date, Time: hm, PatientDNI: dni, Channel: ChannelStaff,
	})
	require.NoError(t, err)
	return ap
}

var frontDesk = auth.Principal{UserID: 2, Username: "recepcion", Role: models.RoleFrontDesk}

func TestBookingThenDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap := f.book(t, "2024-06-03", "09:00", "40111222")
	assert.NotZero(t, ap.ID)
	assert.Equal(t, string(domain.StatusUnvisited), ap.Status)

	_, err := f.create().Execute(ctx, CreateAppointmentInput{
		Doctor: "dra_gomez", Date: "2024-06-03", Time: "09:00", PatientDNI: "40111222", Channel: ChannelStaff,
	})
	assert.ErrorIs(t, err, domain.ErrSlotAlreadyBooked)
	assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))
}

func TestBookingOutsideTemplateIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.create().Execute(context.Background(), CreateAppointmentInput{
		Doctor: "dra_gomez", Date: "2024-06-03", Time: "08:00", PatientDNI: "40111222", Channel: ChannelStaff,
	})
	assert.ErrorIs(t, err, domain.ErrSlotNotOffered)
}

func TestBookingValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateAppointmentInput
		code string
	}{
		{"missing doctor", CreateAppointmentInput{Date: "2024-06-03", Time: "09:00", PatientDNI: "40111222"}, "invalid_request"},
		{"bad date", CreateAppointmentInput{Doctor: "dra_gomez", Date: "03/06/2024", Time: "09:00", PatientDNI: "40111222"}, "invalid_date_format"},
		{"bad time", CreateAppointmentInput{Doctor: "dra_gomez", Date: "2024-06-03", Time: "9h", PatientDNI: "40111222"}, "invalid_time_format"},
		{"bad dni", CreateAppointmentInput{Doctor: "dra_gomez", Date: "2024-06-03", Time: "09:00", PatientDNI: "12"}, "invalid_dni"},
		{"unknown doctor", CreateAppointmentInput{Doctor: "dr_nadie", Date: "2024-06-03", Time: "09:00", PatientDNI: "40111222"}, "doctor_not_found"},
		{"unknown patient", CreateAppointmentInput{Doctor: "dra_gomez", Date: "2024-06-03", Time: "09:00", PatientDNI: "30999888", Channel: ChannelStaff}, "patient_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create().Execute(ctx, tc.in)
			require.Error(t, err)
			assert.True(t, httperr.IsBusiness(err, tc.code), err.Error())
		})
	}
}

func TestBookingAcceptsUnpaddedTime(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, "2024-06-03", "9:30", "40111222")
	assert.Equal(t, "09:30", ap.Time)
}

func TestPublicBookingCreatesPlaceholderAndQueuesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.create().Execute(ctx, CreateAppointmentInput{
		Doctor: "dra_gomez", Date: "2024-06-03", Time: "09:30",
		PatientDNI: "30999888", Email: "paciente@example.com", Channel: ChannelPublic,
	})
	require.NoError(t, err)
	assert.Equal(t, "30999888", ap.PatientDNI)

	pat, err := f.repo.FindPatient(ctx, "30999888")
	require.NoError(t, err)
	require.NotNil(t, pat)
	assert.True(t, pat.Incomplete())
	assert.Equal(t, "paciente@example.com", pat.Email)

	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, "paciente@example.com", f.notify.sent[0].To)
}

func TestAvailabilitySubtractsBookedTimes(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-03", "09:00", "40111222")

	got, err := NewGetAvailability(f.repo, f.loc).Execute(context.Background(), domain.AvailabilityInput{
		Doctor: "dra_gomez", Date: "2024-06-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "LUNES", got.Weekday)
	assert.Equal(t, []string{"09:30"}, got.Slots)
	assert.False(t, got.Blocked)
}

func TestAvailabilityUnknownDoctorIsEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := NewGetAvailability(f.repo, f.loc).Execute(context.Background(), domain.AvailabilityInput{
		Doctor: "dr_nadie", Date: "2024-06-03",
	})
	require.NoError(t, err)
	assert.Empty(t, got.Slots)

	_, err = NewGetAvailability(f.repo, f.loc).Execute(context.Background(), domain.AvailabilityInput{
		Doctor: "dra_gomez", Date: "2024-13-40",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestBlackoutEmptiesDayAndBlocksBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.CreateBlackout(ctx, &models.Blackout{
		DoctorID: f.doctor.ID, StartDate: "2024-06-03", EndDate: "2024-06-10", Reason: "vacaciones", Active: true,
	}))

	got, err := NewGetAvailability(f.repo, f.loc).Execute(ctx, domain.AvailabilityInput{
		Doctor: "dra_gomez", Date: "2024-06-05",
	})
	require.NoError(t, err)
	assert.True(t, got.Blocked)
	assert.Equal(t, "vacaciones", got.Reason)
	assert.Empty(t, got.Slots)

	_, err = f.create().Execute(ctx, CreateAppointmentInput{
		Doctor: "dra_gomez", Date: "2024-06-05", Time: "10:00", PatientDNI: "40111222", Channel: ChannelStaff,
	})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "doctor_unavailable"))

	var be httperr.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "vacaciones", be.Extra["motivo"])
}

func TestBlackoutWinsOverMissingTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	moved := f.book(t, "2024-06-12", "10:00", "40111222")
	require.NoError(t, f.repo.CreateBlackout(ctx, &models.Blackout{
		DoctorID: f.doctor.ID, StartDate: "2024-06-03", EndDate: "2024-06-10", Reason: "congreso", Active: true,
	}))

	cases := []struct{ date, hm string }{
		{"2024-06-04", "09:00"}, // Tuesday, no template at all
		{"2024-06-03", "08:00"}, // Monday, time not offered
	}
	for _, tc := range cases {
		_, err := f.create().Execute(ctx, CreateAppointmentInput{
			Doctor: "dra_gomez", Date: tc.date, Time: tc.hm, PatientDNI: "40111222", Channel: ChannelStaff,
		})
		require.Error(t, err, tc.date)
		assert.True(t, httperr.IsBusiness(err, "doctor_unavailable"), "%s %s: %v", tc.date, tc.hm, err)

		var be httperr.BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, true, be.Extra["bloqueado"])
		assert.Equal(t, "congreso", be.Extra["motivo"])
	}

	_, err := NewReschedule(f.repo, nil, f.loc).Execute(ctx, RescheduleInput{
		Key:     domain.Key{PatientDNI: moved.PatientDNI, Date: moved.Date, Time: moved.Time},
		NewDate: "2024-06-04",
		NewTime: "08:00",
	})
	assert.True(t, httperr.IsBusiness(err, "doctor_unavailable"), "%v", err)
}

func TestPatientCannotHoldTwoAppointmentsAtOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := dbtest.SeedUser(t, f.db, "dr_lopez", models.RoleDoctor)
	dbtest.SeedSlots(t, f.db, other.ID, "LUNES", "09:00", "09:30")

	f.book(t, "2024-06-03", "09:00", "40111222")

	_, err := f.create().Execute(ctx, CreateAppointmentInput{
		Doctor: "dr_lopez", Date: "2024-06-03", Time: "09:00", PatientDNI: "40111222", Channel: ChannelStaff,
	})
	assert.ErrorIs(t, err, domain.ErrPatientAlreadyBooked)
	assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))

	later, err := f.create().Execute(ctx, CreateAppointmentInput{
		Doctor: "dr_lopez", Date: "2024-06-03", Time: "09:30", PatientDNI: "40111222", Channel: ChannelStaff,
	})
	require.NoError(t, err)

	_, err = NewReschedule(f.repo, nil, f.loc).Execute(ctx, RescheduleInput{
		Key:     domain.Key{PatientDNI: "40111222", Date: later.Date, Time: later.Time},
		NewDate: "2024-06-03",
		NewTime: "09:00",
	})
	assert.ErrorIs(t, err, domain.ErrPatientAlreadyBooked)
}

func TestConcurrentBookingsOfOneSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	for i := 0; i < workers; i++ {
		dbtest.SeedPatient(t, f.db, fmt.Sprintf("3000000%d", i))
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, workers)
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.create().Execute(ctx, CreateAppointmentInput{
				Doctor: "dra_gomez", Date: "2024-06-03", Time: "09:00",
				PatientDNI: fmt.Sprintf("3000000%d", i), Channel: ChannelStaff,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	booked := 0
	for _, err := range errs {
		if err == nil {
			booked++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotAlreadyBooked)
	}
	assert.Equal(t, 1, booked)

	var count int64
	require.NoError(t, f.db.Model(&models.Appointment{}).
		Where("date = ? AND time = ?", "2024-06-03", "09:00").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckInThenZeroPaymentGoesToWaitingRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:00", "40111222")

	key := domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}

	ap, err := NewCheckIn(f.repo, nil, nil, f.loc).Execute(ctx, key, frontDesk)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCheckedIn), ap.Status)

	out, err := NewCollectPayment(f.repo, nil, nil, f.loc).Execute(ctx, CollectPaymentInput{
		Key: key, Amount: 0, Method: models.PaymentCash, Actor: frontDesk,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInsurer, out.Payment.Method)
	assert.Equal(t, "OSDE", out.Payment.Insurer)
	assert.Equal(t, "2024-06-03", out.Payment.Date)
	assert.Equal(t, string(domain.StatusWaitingRoom), out.Appointment.Status)

	stored, err := f.repo.FindAppointmentByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusWaitingRoom), stored.Status)
	assert.True(t, stored.Paid)

	var payments int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments)
}

func TestPaymentWithoutCheckInFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:00", "40111222")

	_, err := NewCollectPayment(f.repo, nil, nil, f.loc).Execute(ctx, CollectPaymentInput{
		Key:    domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"},
		Amount: 5000, Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	var payments int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestCheckInTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:00", "40111222")

	uc := NewCheckIn(f.repo, nil, nil, f.loc)
	key := domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}

	_, err := uc.Execute(ctx, key, frontDesk)
	require.NoError(t, err)

	ap, err := uc.Execute(ctx, key, frontDesk)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCheckedIn), ap.Status)
}

func TestCheckInUnknownKey(t *testing.T) {
	f := newFixture(t)

	_, err := NewCheckIn(f.repo, nil, nil, f.loc).Execute(context.Background(),
		domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}, frontDesk)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestDoctorStatusFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:00", "40111222")

	key := domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}
	uc := NewUpdateStatus(f.repo, nil, nil, f.loc)
	doctor := auth.Principal{UserID: f.doctor.ID, Username: "dra_gomez", Role: models.RoleDoctor}

	_, err := uc.Execute(ctx, key, string(domain.StatusCalled), doctor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.Execute(ctx, key, "recepcionado", doctor)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	ap, err := uc.Execute(ctx, key, string(domain.StatusAbsent), doctor)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusAbsent), ap.Status)

	_, err = uc.Execute(ctx, key, string(domain.StatusSeen), doctor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestAbsentAppointmentKeepsItsSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:00", "40111222")

	key := domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}
	_, err := NewUpdateStatus(f.repo, nil, nil, f.loc).Execute(ctx, key, string(domain.StatusAbsent), frontDesk)
	require.NoError(t, err)

	got, err := NewGetAvailability(f.repo, f.loc).Execute(ctx, domain.AvailabilityInput{Doctor: "dra_gomez", Date: "2024-06-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30"}, got.Slots)
}

func TestRescheduleChecksTargetSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbtest.SeedPatient(t, f.db, "30999888")

	f.book(t, "2024-06-03", "09:00", "40111222")
	f.book(t, "2024-06-03", "09:30", "30999888")

	uc := NewReschedule(f.repo, nil, f.loc)
	key := domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "09:00"}

	_, err := uc.Execute(ctx, RescheduleInput{Key: key, NewDate: "2024-06-03", NewTime: "09:30"})
	assert.ErrorIs(t, err, domain.ErrSlotAlreadyBooked)

	_, err = uc.Execute(ctx, RescheduleInput{Key: key, NewDate: "2024-06-04", NewTime: "09:00"})
	assert.ErrorIs(t, err, domain.ErrSlotNotOffered)

	// Same slot: self-exclusion lets it through.
	_, err = uc.Execute(ctx, RescheduleInput{Key: key, NewDate: "2024-06-03", NewTime: "09:00"})
	require.NoError(t, err)

	ap, err := uc.Execute(ctx, RescheduleInput{Key: key, NewDate: "2024-06-05", NewTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", ap.Date)
	assert.Equal(t, "10:00", ap.Time)

	got, err := NewGetAvailability(f.repo, f.loc).Execute(ctx, domain.AvailabilityInput{Doctor: "dra_gomez", Date: "2024-06-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, got.Slots)
}

func TestDeleteFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap := f.book(t, "2024-06-03", "09:00", "40111222")
	f.book(t, "2024-06-03", "09:30", "40111222")

	uc := NewDeleteAppointment(f.repo, nil, f.loc)
	require.NoError(t, uc.ByID(ctx, ap.ID, frontDesk))
	assert.ErrorIs(t, uc.ByID(ctx, ap.ID, frontDesk), domain.ErrAppointmentNotFound)

	require.NoError(t, uc.ByKey(ctx, domain.Key{PatientDNI: "40111222", Date: "2024-06-03", Time: "9:30"}, frontDesk))

	f.book(t, "2024-06-03", "09:00", "40111222")
}

func TestListAppointmentsByDoctorAndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "2024-06-03", "09:30", "40111222")
	f.book(t, "2024-06-03", "09:00", "40111222")
	f.book(t, "2024-06-05", "10:00", "40111222")

	uc := NewListAppointments(f.repo, f.loc)

	list, err := uc.Day(ctx, "dra_gomez", "2024-06-03")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "09:00", list[0].Time)
	assert.Equal(t, "dra_gomez", list[0].Doctor)
	assert.Equal(t, "Ana", list[0].FirstName)

	list, err = uc.Execute(ctx, ListAppointmentsInput{From: "2024-06-01", To: "2024-06-30"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = uc.Execute(ctx, ListAppointmentsInput{Doctor: "dr_nadie"})
	require.NoError(t, err)
	assert.Empty(t, list)
}
