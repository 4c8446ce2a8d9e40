package dto

import "github.com/BruksfildServices01/consultorio-api/internal/models"

type AppointmentListDTO struct {
	ID               uint    `json:"id"`
	Doctor           string  `json:"medico"`
	DoctorName       string  `json:"medico_nombre"`
	Date             string  `json:"fecha"`
	Time             string  `json:"hora"`
	PatientDNI       string  `json:"dni_paciente"`
	FirstName        string  `json:"nombre"`
	LastName         string  `json:"apellido"`
	Insurer          string  `json:"obra_social"`
	Phone            string  `json:"celular"`
	Status           string  `json:"estado"`
	ConsultationType string  `json:"tipo_consulta"`
	Cost             float64 `json:"costo"`
	Paid             bool    `json:"pagado"`
	Notes            string  `json:"observaciones"`
	Incomplete       bool    `json:"paciente_incompleto"`
}

// AppointmentFrom flattens an appointment with its preloaded doctor and
// patient.
func AppointmentFrom(ap models.Appointment) AppointmentListDTO {
	out := AppointmentListDTO{
		ID:               ap.ID,
		Doctor:           ap.Doctor.Username,
		DoctorName:       ap.Doctor.FullName,
		Date:             ap.Date,
		Time:             ap.Time,
		PatientDNI:       ap.PatientDNI,
		Status:           ap.Status,
		ConsultationType: ap.ConsultationType,
		Cost:             ap.Cost,
		Paid:             ap.Paid,
		Notes:            ap.Notes,
	}
	if ap.Patient != nil {
		out.FirstName = ap.Patient.FirstName
		out.LastName = ap.Patient.LastName
		out.Insurer = ap.Patient.Insurer
		out.Phone = ap.Patient.Phone
		out.Incomplete = ap.Patient.Incomplete()
	}
	return out
}
