package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de comprobante soportados.
const (
	TipoBoleta      = "Boleta"
	TipoFactura     = "Factura"
	TipoNotaDeVenta = "Nota de venta"
)

// Estados de baja (anulación fiscal) de un comprobante ya aceptado.
const (
	CompBajaSolicitada = "baja_solicitada"
	CompBajaAceptada   = "baja_aceptada"
)

// Comprobante is the fiscal voucher issued for a sale: a legally sequential
// (serie, correlativo) pair per document type, plus the submission bookkeeping
// for the external tax authority.
//
// The row doubles as the durable submission-intent record: it is created with
// Estado "pendiente" inside the same transaction as the sale, so a crash
// between commit and submission never loses the fiscal obligation — the retry
// cron picks it up.
//
// Estado: no_aplica | pendiente | aceptado | rechazado | error | baja_solicitada | baja_aceptada
type Comprobante struct {
	ID   uuid.UUID `gorm:"type:char(36);primaryKey"`
	Tipo string    `gorm:"type:varchar(20);not null;index"`
	// Serie includes the type prefix, e.g. "B001", "F002", "N001"
	Serie       string `gorm:"type:varchar(4);not null"`
	Correlativo string `gorm:"type:varchar(8);not null"`
	// Numero is the formatted "B001-00000001" form, unique across the table
	Numero string `gorm:"type:varchar(13);not null;uniqueIndex"`
	Estado string `gorm:"type:varchar(20);not null;default:'pendiente'"`

	// SUNAT response bookkeeping
	CodigoSunat   *string `gorm:"type:varchar(10)"`
	Observaciones *string

	// Retry fields — used by retry_cron to re-attempt failed submissions
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Comprobante) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// EsFiscal reports whether this document type must be submitted to SUNAT.
// Notas de venta are internal documents and are never sent.
func (c *Comprobante) EsFiscal() bool {
	return c.Tipo == TipoBoleta || c.Tipo == TipoFactura
}
