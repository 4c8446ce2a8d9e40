package dto

import (
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

type PatientDTO struct {
	ID            uint   `json:"id"`
	DNI           string `json:"dni"`
	FirstName     string `json:"nombre"`
	LastName      string `json:"apellido"`
	BirthDate     string `json:"fecha_nacimiento"`
	Age           int    `json:"edad"`
	Insurer       string `json:"obra_social"`
	InsurerNumber string `json:"numero_obra_social"`
	Phone         string `json:"celular"`
	Email         string `json:"email"`
	Incomplete    bool   `json:"incompleto"`
}

func PatientFrom(p models.Patient, now time.Time) PatientDTO {
	return PatientDTO{
		ID:            p.ID,
		DNI:           p.DNI,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		BirthDate:     p.BirthDate,
		Age:           p.Age(now),
		Insurer:       p.Insurer,
		InsurerNumber: p.InsurerNumber,
		Phone:         p.Phone,
		Email:         p.Email,
		Incomplete:    p.Incomplete(),
	}
}
