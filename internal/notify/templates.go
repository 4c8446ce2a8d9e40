package notify

import (
	"fmt"
	"strings"
)

type BookingDetails struct {
	ClinicName string
	Doctor     string
	Date       string
	Time       string
	PatientDNI string
}

// BookingConfirmation builds the message sent after a self-service booking.
func BookingConfirmation(to string, d BookingDetails) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Su turno en %s fue registrado.\n\n", d.ClinicName)
	fmt.Fprintf(&b, "Profesional: %s\n", d.Doctor)
	fmt.Fprintf(&b, "Fecha: %s\n", d.Date)
	fmt.Fprintf(&b, "Hora: %s\n", d.Time)
	fmt.Fprintf(&b, "DNI: %s\n\n", d.PatientDNI)
	b.WriteString("Si no puede asistir, por favor comuníquese con el consultorio.\n")

	return EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Confirmación de turno - %s %s", d.Date, d.Time),
		Body:    b.String(),
	}
}
