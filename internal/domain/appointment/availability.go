package appointment

// Key identifies an appointment the way the front desk does.
type Key struct {
	PatientDNI string
	Date       string
	Time       string
}

type AvailabilityInput struct {
	Doctor string
	Date   string
}

// Availability is the resolver output. Blocked days carry no slots.
type Availability struct {
	Doctor  string   `json:"medico"`
	Date    string   `json:"fecha"`
	Weekday string   `json:"dia_semana"`
	Slots   []string `json:"horarios"`
	Blocked bool     `json:"bloqueado"`
	Reason  string   `json:"motivo,omitempty"`
}

// FreeSlots removes booked times from the template, keeping its order and
// dropping duplicates.
func FreeSlots(template []string, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	out := make([]string, 0, len(template))
	for _, t := range template {
		if _, ok := taken[t]; ok {
			continue
		}
		taken[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
