package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proveedor is a supplier referenced by warehouse entry notes.
type Proveedor struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	RazonSocial string    `gorm:"not null"`
	RUC         string    `gorm:"type:varchar(11);uniqueIndex;not null;column:ruc"`
	Telefono    *string
	Email       *string
	Direccion   *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Proveedor) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization (proveedors → proveedores).
func (Proveedor) TableName() string { return "proveedores" }
