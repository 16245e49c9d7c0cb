package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sucursal is a branch/store. Every branch points at exactly one warehouse:
// a sale's stock effects apply only to that warehouse, so AlmacenID is the
// branch→warehouse mapping the sale coordinator resolves through.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Nombre    string    `gorm:"not null"`
	AlmacenID uuid.UUID `gorm:"type:char(36);not null"`
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`

	Almacen *Almacen `gorm:"foreignKey:AlmacenID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Sucursal) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization (sucursals → sucursales).
func (Sucursal) TableName() string { return "sucursales" }
