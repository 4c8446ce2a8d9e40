package models

// All lists every table owned by AutoMigrate, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Patient{},
		&AgendaSlot{},
		&Appointment{},
		&Payment{},
		&Blackout{},
		&ClinicalNote{},
		&AuditLog{},
	}
}
