package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint `gorm:"not null;uniqueIndex:idx_appointment_slot,priority:1" json:"-"`
	Doctor   User `gorm:"foreignKey:DoctorID" json:"-"`

	Date string `gorm:"size:10;not null;uniqueIndex:idx_appointment_slot,priority:2;index" json:"fecha"`
	Time string `gorm:"size:5;not null;uniqueIndex:idx_appointment_slot,priority:3" json:"hora"`

	PatientDNI string   `gorm:"size:8;not null;index" json:"dni_paciente"`
	Patient    *Patient `gorm:"foreignKey:PatientDNI;references:DNI" json:"-"`

	Status           string  `gorm:"size:20;not null;default:'sin atender'" json:"estado"`
	ConsultationType string  `gorm:"size:50" json:"tipo_consulta"`
	Cost             float64 `json:"costo"`
	Paid             bool    `json:"pagado"`
	Notes            string  `gorm:"size:255" json:"observaciones"`

	CreatedAt time.Time `json:"fecha_creacion"`
	UpdatedAt time.Time `json:"-"`
}
