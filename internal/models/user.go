package models

import "time"

const (
	RoleDoctor    = "medico"
	RoleFrontDesk = "secretaria"
	RoleAdmin     = "administrador"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username     string `gorm:"size:50;uniqueIndex;not null" json:"usuario"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;index" json:"rol"`

	FullName  string `gorm:"size:120" json:"nombre"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:30" json:"telefono"`
	Specialty string `gorm:"size:100" json:"especialidad"`
	Active    bool   `gorm:"default:true" json:"activo"`

	CreatedAt time.Time `json:"fecha_creacion"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}
