package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos y estados de una nota de almacén.
const (
	NotaIngreso = "ingreso"
	NotaSalida  = "salida"

	NotaActiva  = "activa"
	NotaAnulada = "anulada"
)

// NotaAlmacen is a warehouse entry/exit note. Entry notes increment stock,
// exit notes decrement it; both effects are applied atomically with the note
// insert and recorded in the kardex. Voiding a note applies the inverse.
type NotaAlmacen struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Tipo        string     `gorm:"type:varchar(10);not null;index"`
	AlmacenID   uuid.UUID  `gorm:"type:char(36);not null;index"`
	ProveedorID *uuid.UUID `gorm:"type:char(36);index"` // set on supplier-sourced entries
	UsuarioID   uuid.UUID  `gorm:"type:char(36);not null"`
	Glosa       string     `gorm:"not null"`
	Fecha       time.Time  `gorm:"not null"`
	Estado      string     `gorm:"type:varchar(10);not null;default:'activa'"`

	Detalles []DetalleNota `gorm:"foreignKey:NotaID"`

	Almacen   *Almacen   `gorm:"foreignKey:AlmacenID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *NotaAlmacen) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization.
func (NotaAlmacen) TableName() string { return "notas_almacen" }

// DetalleNota is one product line within a warehouse note.
type DetalleNota struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	NotaID     uuid.UUID `gorm:"type:char(36);not null;index"`
	ProductoID uuid.UUID `gorm:"type:char(36);not null"`
	Cantidad   int       `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`

	CreatedAt time.Time
}

func (d *DetalleNota) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization.
func (DetalleNota) TableName() string { return "detalles_nota" }
