package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStock is one immutable entry of the kardex: every stock change
// (sale, void, warehouse note, manual adjustment) writes exactly one row in
// the same transaction that mutates Inventario. Movements are never updated
// or deleted — corrections create inverse entries.
// Tipo: "venta" | "anulacion_venta" | "nota_ingreso" | "nota_salida" | "anulacion_nota" | "ajuste"
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	ProductoID uuid.UUID `gorm:"type:char(36);not null;index"`
	AlmacenID  uuid.UUID `gorm:"type:char(36);not null;index"`
	Tipo       string    `gorm:"type:varchar(20);not null"`
	// Cantidad: positive = entrada, negative = salida
	Cantidad      int `gorm:"not null"`
	StockAnterior int `gorm:"not null"`
	StockNuevo    int `gorm:"not null"`
	Motivo        string
	// ReferenciaID links to the originating venta or nota de almacén
	ReferenciaID *uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt    time.Time  `gorm:"index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Almacen  *Almacen  `gorm:"foreignKey:AlmacenID"`
}

func (m *MovimientoStock) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization.
func (MovimientoStock) TableName() string { return "movimientos_stock" }
