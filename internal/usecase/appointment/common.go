package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	domain "github.com/BruksfildServices01/consultorio-api/internal/domain/appointment"
	"github.com/BruksfildServices01/consultorio-api/internal/domain/patient"
	"github.com/BruksfildServices01/consultorio-api/internal/notify"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

// Channel tells staff bookings from patient self-service.
type Channel string

const (
	ChannelStaff  Channel = "staff"
	ChannelPublic Channel = "public"
)

// Notifier queues outbound email after a booking commits.
type Notifier interface {
	Enqueue(msg notify.EmailMessage) bool
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := timezone.ParseDate(strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return d, nil
}

func parseClock(s string) (string, error) {
	hm, err := timezone.NormalizeClock(strings.TrimSpace(s))
	if err != nil {
		return "", domain.ErrInvalidTime
	}
	return hm, nil
}

// normalizeKey validates the front-desk key and returns it in stored form.
func normalizeKey(k domain.Key, loc *time.Location) (domain.Key, error) {
	dni, err := patient.NormalizeDNI(k.PatientDNI)
	if err != nil {
		return k, err
	}
	d, err := parseDate(k.Date, loc)
	if err != nil {
		return k, err
	}
	hm, err := parseClock(k.Time)
	if err != nil {
		return k, err
	}
	return domain.Key{
		PatientDNI: dni,
		Date:       d.Format(timezone.DateLayout),
		Time:       hm,
	}, nil
}

func auditEvent(
	actor auth.Principal,
	action string,
	id uint,
	metadata any,
) audit.Event {
	ev := audit.Event{
		Username: actor.Username,
		Action:   action,
		Entity:   "appointment",
		EntityID: &id,
		Metadata: metadata,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		ev.UserID = &uid
	}
	return ev
}
