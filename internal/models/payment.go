package models

import "time"

const (
	PaymentCash     = "efectivo"
	PaymentTransfer = "transferencia"
	PaymentInsurer  = "obra_social"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientDNI string   `gorm:"size:8;not null;index" json:"dni_paciente"`
	Patient    *Patient `gorm:"foreignKey:PatientDNI;references:DNI" json:"-"`

	Amount  float64 `gorm:"not null" json:"monto"`
	Date    string  `gorm:"size:10;not null;index" json:"fecha"`
	Method  string  `gorm:"size:20;not null" json:"tipo_pago"`
	Insurer string  `gorm:"size:100" json:"obra_social"`
	Notes   string  `gorm:"size:255" json:"observaciones"`

	CreatedAt time.Time `json:"fecha_creacion"`
}
