package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Usuario is a system user (cashier, supervisor, administrator). The
// SucursalID assignment is how a sale resolves its branch — and through the
// branch, the warehouse its stock effects hit.
// Rol: "cajero" | "supervisor" | "administrador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Nombres      string    `gorm:"not null"`
	Apellidos    string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	SucursalID   uuid.UUID `gorm:"type:char(36);not null;index"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
