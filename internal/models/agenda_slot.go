package models

import "time"

// AgendaSlot is one recurring bookable time in a doctor's weekly template.
type AgendaSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint `gorm:"not null;uniqueIndex:idx_agenda_slot,priority:1" json:"-"`
	Doctor   User `gorm:"foreignKey:DoctorID" json:"-"`

	Weekday string `gorm:"size:12;not null;uniqueIndex:idx_agenda_slot,priority:2" json:"dia_semana"`
	Time    string `gorm:"size:5;not null;uniqueIndex:idx_agenda_slot,priority:3" json:"horario"`

	CreatedAt time.Time `json:"-"`
}
