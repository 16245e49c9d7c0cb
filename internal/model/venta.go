package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados locales de una venta.
const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Estados de aceptación fiscal (estado_sunat).
const (
	SunatNoAplica  = "no_aplica" // Nota de venta — nunca se envía
	SunatPendiente = "pendiente"
	SunatAceptado  = "aceptado"
	SunatRechazado = "rechazado"
	SunatError     = "error" // reintentos agotados, movido a DLQ
)

// Venta is one committed sale transaction. Header totals are derived from
// its Detalles at registration time and never recomputed afterwards.
// Estado transitions: completada → anulada. Nothing else.
// EstadoSunat is mutated only by the fiscal reconciliation path, never by
// the sale commit itself.
type Venta struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	SucursalID    uuid.UUID `gorm:"type:char(36);not null;index"`
	ClienteID     uuid.UUID `gorm:"type:char(36);not null;index"`
	ComprobanteID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex"`
	UsuarioID     uuid.UUID `gorm:"type:char(36);not null"`
	FechaEmision  time.Time `gorm:"not null"`
	// IGV is the tax portion of Total (prices are tax-inclusive)
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IGV         decimal.Decimal `gorm:"type:decimal(12,2);not null;column:igv"`
	Recibido    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Vuelto      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'completada'"`
	EstadoSunat string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Observacion *string

	MotivoAnulacion *string
	FechaAnulacion  *time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Pagos    []VentaPago    `gorm:"foreignKey:VentaID"`

	Comprobante *Comprobante `gorm:"foreignKey:ComprobanteID"`
	Cliente     *Cliente     `gorm:"foreignKey:ClienteID"`
	Sucursal    *Sucursal    `gorm:"foreignKey:SucursalID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *Venta) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// DetalleVenta is one product line within a Venta. Owned exclusively by its
// sale; never mutated after commit (reversal reads but does not alter lines).
type DetalleVenta struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	VentaID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	ProductoID uuid.UUID  `gorm:"type:char(36);not null;index"`
	VarianteID *uuid.UUID `gorm:"type:char(36)"` // optional color/size variant
	Cantidad   int        `gorm:"not null"`
	// Precio is the tax-inclusive unit price at sale time
	Precio       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DescuentoPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto         `gorm:"foreignKey:ProductoID"`
	Variante *ProductoVariante `gorm:"foreignKey:VarianteID"`

	CreatedAt time.Time
}

func (d *DetalleVenta) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName overrides GORM's pluralization (detalle_ventas → detalles_venta).
func (DetalleVenta) TableName() string { return "detalles_venta" }

// VentaPago is one entry of the ordered payment breakdown of a sale.
type VentaPago struct {
	ID      uuid.UUID       `gorm:"type:char(36);primaryKey"`
	VentaID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Metodo  string          `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time
}

func (p *VentaPago) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
