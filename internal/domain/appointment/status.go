package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusUnvisited   Status = "sin atender"
	StatusCheckedIn   Status = "recepcionado"
	StatusWaitingRoom Status = "sala de espera"
	StatusCalled      Status = "llamado"
	StatusSeen        Status = "atendido"
	StatusAbsent      Status = "ausente"
)

// InitialStatus of every new booking.
func InitialStatus() Status {
	return StatusUnvisited
}

// ===============================
// Front-desk events
// ===============================

type Event string

const (
	EventCheckIn        Event = "check_in"
	EventCollectPayment Event = "collect_payment"
	EventCall           Event = "call"
	EventMarkSeen       Event = "mark_seen"
	EventMarkAbsent     Event = "mark_absent"
)

type transition struct {
	from []Status
	to   Status
}

// A check-in repeated on a checked-in appointment is accepted and changes
// nothing.
var transitions = map[Event]transition{
	EventCheckIn: {
		from: []Status{StatusUnvisited, StatusCheckedIn},
		to:   StatusCheckedIn,
	},
	EventCollectPayment: {
		from: []Status{StatusCheckedIn},
		to:   StatusWaitingRoom,
	},
	EventCall: {
		from: []Status{StatusWaitingRoom, StatusCheckedIn},
		to:   StatusCalled,
	},
	EventMarkSeen: {
		from: []Status{StatusCalled, StatusCheckedIn, StatusUnvisited},
		to:   StatusSeen,
	},
	EventMarkAbsent: {
		from: []Status{StatusCalled, StatusCheckedIn, StatusUnvisited},
		to:   StatusAbsent,
	},
}

// AllowedFrom lists the states ev may be applied to.
func AllowedFrom(ev Event) []Status {
	return transitions[ev].from
}

// Next returns the state ev leads to from current, or
// ErrInvalidStateTransition.
func Next(current Status, ev Event) (Status, error) {
	tr, ok := transitions[ev]
	if !ok {
		return current, ErrInvalidStateTransition
	}
	for _, s := range tr.from {
		if s == current {
			return tr.to, nil
		}
	}
	return current, ErrInvalidStateTransition
}

// EventForTarget maps the estado requested by the doctor's screen to its
// event. Only called, seen and absent can be requested directly.
func EventForTarget(target string) (Event, error) {
	switch Status(target) {
	case StatusCalled:
		return EventCall, nil
	case StatusSeen:
		return EventMarkSeen, nil
	case StatusAbsent:
		return EventMarkAbsent, nil
	default:
		return "", ErrInvalidStatus
	}
}
