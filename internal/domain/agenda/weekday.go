package agenda

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
)

const (
	Monday    = "LUNES"
	Tuesday   = "MARTES"
	Wednesday = "MIERCOLES"
	Thursday  = "JUEVES"
	Friday    = "VIERNES"
	Saturday  = "SABADO"
	Sunday    = "DOMINGO"
)

// Weekdays in calendar order, Monday first.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var byGoWeekday = map[time.Weekday]string{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf names the weekday of d in its own location.
func WeekdayOf(d time.Time) string {
	return byGoWeekday[d.Weekday()]
}

// NormalizeWeekday folds case and diacritics: "miércoles" and "Miercoles"
// both become MIERCOLES. Unknown names return false.
func NormalizeWeekday(name string) (string, bool) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		return "", false
	}
	folded = strings.ToUpper(folded)

	for _, d := range Weekdays {
		if d == folded {
			return d, true
		}
	}
	return "", false
}

// Index orders weekday names for display. Unknown names sort last.
func Index(weekday string) int {
	for i, d := range Weekdays {
		if d == weekday {
			return i
		}
	}
	return len(Weekdays)
}

var ErrInvalidWeekday = httperr.Validation("invalid_weekday", "Día de la semana inválido")
