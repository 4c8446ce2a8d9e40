package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/BruksfildServices01/consultorio-api/internal/dto"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WritePayments writes one row per payment plus a header.
func WritePayments(w io.Writer, payments []models.Payment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "fecha", "dni_paciente", "monto", "tipo_pago", "obra_social", "observaciones"}); err != nil {
		return err
	}
	for _, p := range payments {
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Date,
			p.PatientDNI,
			money(p.Amount),
			p.Method,
			p.Insurer,
			p.Notes,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteAttendances writes the seen-appointments report.
func WriteAttendances(w io.Writer, rows []dto.AppointmentListDTO) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"fecha", "hora", "medico", "dni_paciente", "apellido", "nombre", "obra_social", "tipo_consulta", "costo", "pagado"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Date,
			r.Time,
			r.Doctor,
			r.PatientDNI,
			r.LastName,
			r.FirstName,
			r.Insurer,
			r.ConsultationType,
			money(r.Cost),
			strconv.FormatBool(r.Paid),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
