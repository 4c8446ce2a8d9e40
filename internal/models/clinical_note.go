package models

import "time"

// ClinicalNote is an append-only entry of a patient's history.
type ClinicalNote struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientDNI string   `gorm:"size:8;not null;index" json:"dni"`
	Patient    *Patient `gorm:"foreignKey:PatientDNI;references:DNI" json:"-"`

	DoctorID uint `gorm:"not null;index" json:"-"`
	Doctor   User `gorm:"foreignKey:DoctorID" json:"-"`

	Note             string `gorm:"type:text;not null" json:"consulta_medica"`
	ConsultationDate string `gorm:"size:10;not null" json:"fecha_consulta"`

	CreatedAt time.Time `json:"fecha_creacion"`
}
