package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is either a natural person (DNI, 8 digits) or a legal entity
// (RUC, 11 digits). Exactly one of the two documents is expected; facturas
// require a RUC.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Nombres     *string
	Apellidos   *string
	RazonSocial *string
	DNI         *string `gorm:"type:varchar(8);uniqueIndex;column:dni"`
	RUC         *string `gorm:"type:varchar(11);uniqueIndex;column:ruc"`
	Direccion   *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Documento returns the identifying document (RUC wins over DNI).
func (c *Cliente) Documento() string {
	if c.RUC != nil && *c.RUC != "" {
		return *c.RUC
	}
	if c.DNI != nil && *c.DNI != "" {
		return *c.DNI
	}
	return ""
}

// NombreCompleto returns the display name: razón social for legal entities,
// "nombres apellidos" for natural persons.
func (c *Cliente) NombreCompleto() string {
	if c.RazonSocial != nil && *c.RazonSocial != "" {
		return *c.RazonSocial
	}
	nombre := ""
	if c.Nombres != nil {
		nombre = *c.Nombres
	}
	if c.Apellidos != nil && *c.Apellidos != "" {
		if nombre != "" {
			nombre += " "
		}
		nombre += *c.Apellidos
	}
	return nombre
}
