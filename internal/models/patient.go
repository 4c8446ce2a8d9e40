package models

import (
	"strings"
	"time"
)

// PendingField marks data a placeholder patient still has to complete.
const PendingField = "Pendiente"

type Patient struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	DNI string `gorm:"column:dni;size:8;uniqueIndex;not null" json:"dni"`

	FirstName     string `gorm:"size:100;not null" json:"nombre"`
	LastName      string `gorm:"size:100;not null" json:"apellido"`
	BirthDate     string `gorm:"size:10" json:"fecha_nacimiento"`
	Insurer       string `gorm:"size:100" json:"obra_social"`
	InsurerNumber string `gorm:"size:50" json:"numero_obra_social"`
	Phone         string `gorm:"size:30" json:"celular"`
	Email         string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"fecha_creacion"`
	UpdatedAt time.Time `json:"-"`
}

// NewPlaceholderPatient is what booking and clinical notes create for an
// unknown DNI.
func NewPlaceholderPatient(dni, email string) *Patient {
	return &Patient{
		DNI:       dni,
		FirstName: PendingField,
		LastName:  PendingField,
		Email:     strings.TrimSpace(email),
	}
}

func (p *Patient) Incomplete() bool {
	return p.FirstName == PendingField || p.LastName == PendingField ||
		p.Insurer == "" || p.Phone == "" || p.BirthDate == ""
}

// Age in whole years at now. Zero when the birth date is unknown.
func (p *Patient) Age(now time.Time) int {
	birth, err := time.Parse("2006-01-02", p.BirthDate)
	if err != nil {
		return 0
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
