package dto

import "github.com/BruksfildServices01/consultorio-api/internal/models"

type BlackoutDTO struct {
	ID         uint   `json:"id"`
	Doctor     string `json:"medico"`
	DoctorName string `json:"medico_nombre"`
	StartDate  string `json:"fecha_inicio"`
	EndDate    string `json:"fecha_fin"`
	Reason     string `json:"motivo"`
	Active     bool   `json:"activo"`
}

func BlackoutFrom(b models.Blackout) BlackoutDTO {
	return BlackoutDTO{
		ID:         b.ID,
		Doctor:     b.Doctor.Username,
		DoctorName: b.Doctor.FullName,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Reason:     b.Reason,
		Active:     b.Active,
	}
}
