package models

import "time"

// Blackout is an inclusive date range in which a doctor takes no bookings.
type Blackout struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint `gorm:"not null;index" json:"-"`
	Doctor   User `gorm:"foreignKey:DoctorID" json:"-"`

	StartDate string `gorm:"size:10;not null" json:"fecha_inicio"`
	EndDate   string `gorm:"size:10;not null" json:"fecha_fin"`
	Reason    string `gorm:"size:255" json:"motivo"`
	Active    bool   `gorm:"default:true;index" json:"activo"`

	CreatedBy *uint     `json:"-"`
	CreatedAt time.Time `json:"fecha_creacion"`
}
