package appointment

import "github.com/BruksfildServices01/consultorio-api/internal/httperr"

var (
	ErrInvalidDate            = httperr.Validation("invalid_date_format", "Formato de fecha inválido (usar YYYY-MM-DD)")
	ErrInvalidTime            = httperr.Validation("invalid_time_format", "Formato de hora inválido (usar HH:MM)")
	ErrInvalidStatus          = httperr.Validation("invalid_status", "Estado inválido")
	ErrInvalidAmount          = httperr.Validation("invalid_amount", "El monto debe ser un número mayor o igual a cero")
	ErrInvalidPaymentMethod   = httperr.Validation("invalid_payment_method", "Tipo de pago inválido")
	ErrSlotNotOffered         = httperr.Validation("slot_not_offered", "El horario no está disponible en la agenda del médico")
	ErrSlotAlreadyBooked      = httperr.Conflict("slot_already_booked", "Ya existe un turno para ese médico en esa fecha y hora")
	ErrPatientAlreadyBooked   = httperr.Conflict("patient_already_booked", "El paciente ya tiene un turno en esa fecha y hora")
	ErrInvalidStateTransition = httperr.Conflict("invalid_state_transition", "El turno no está en un estado que permita esta acción")
	ErrAppointmentNotFound    = httperr.Missing("appointment_not_found", "Turno no encontrado")
	ErrPatientNotFound        = httperr.Missing("patient_not_found", "Paciente no encontrado")
	ErrDoctorNotFound         = httperr.Missing("doctor_not_found", "Médico no encontrado")
	ErrBlackoutNotFound       = httperr.Missing("blackout_not_found", "Bloqueo no encontrado")
	ErrInvalidDateRange       = httperr.Validation("invalid_date_range", "La fecha de inicio debe ser anterior o igual a la de fin")
)

// ErrDoctorUnavailable carries the blackout reason so callers can show it.
func ErrDoctorUnavailable(reason string) error {
	return httperr.BusinessError{
		Kind:    httperr.KindValidation,
		Code:    "doctor_unavailable",
		Message: "El médico no atiende en la fecha seleccionada",
		Extra: map[string]any{
			"bloqueado": true,
			"motivo":    reason,
		},
	}
}
