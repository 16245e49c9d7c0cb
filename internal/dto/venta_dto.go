package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado     string `form:"estado,default=completada"` // completada | anulada | all
	SucursalID string `form:"sucursal_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// VentaListItem is returned inside VentaListResponse for GET /v1/ventas.
type VentaListItem struct {
	ID              string               `json:"id"`
	NumComprobante  string               `json:"num_comprobante"`
	TipoComprobante string               `json:"tipo_comprobante"`
	Cliente         string               `json:"cliente"`
	Fecha           string               `json:"fecha"`
	IGV             decimal.Decimal      `json:"igv"`
	Total           decimal.Decimal      `json:"total"`
	Estado          string               `json:"estado"`
	EstadoSunat     string               `json:"estado_sunat"`
	Detalles        []DetalleVentaResponse `json:"detalles"`
}

type VentaListResponse struct {
	Data  []VentaListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleVentaRequest struct {
	ProductoID   string          `json:"producto_id"   validate:"required,uuid"`
	VarianteID   *string         `json:"variante_id"   validate:"omitempty,uuid"`
	Cantidad     int             `json:"cantidad"      validate:"required,min=1"`
	Precio       decimal.Decimal `json:"precio"        validate:"required"`
	DescuentoPct decimal.Decimal `json:"descuento_pct" validate:"min=0,max=100"`
}

type PagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta yape plin transferencia"`
	Monto  decimal.Decimal `json:"monto"  validate:"required"`
}

// RegistrarVentaRequest is the sale creation payload sent by the POS.
// Usuario identifies the cashier; the branch and warehouse are resolved
// from their assignment, never trusted from the client.
type RegistrarVentaRequest struct {
	Usuario         string                `json:"usuario"          validate:"required"`
	TipoComprobante string                `json:"tipo_comprobante" validate:"required"`
	// ClienteDoc: DNI (8) or RUC (11) of the client; unknown natural
	// persons are created on the fly.
	ClienteDoc    string                `json:"cliente_doc"    validate:"required,min=8,max=11,numeric"`
	ClienteNombre string                `json:"cliente_nombre" validate:"omitempty"`
	FechaEmision  string                `json:"fecha_emision"  validate:"required"` // ISO-8601
	TasaIGV       decimal.Decimal       `json:"tasa_igv"       validate:"required"` // e.g. 18
	Detalles      []DetalleVentaRequest `json:"detalles"       validate:"required,min=1,dive"`
	Pagos         []PagoRequest         `json:"pagos"          validate:"required,min=1,dive"`
	Observacion   *string               `json:"observacion"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	Producto     string          `json:"producto"`
	Cantidad     int             `json:"cantidad"`
	Precio       decimal.Decimal `json:"precio"`
	DescuentoPct decimal.Decimal `json:"descuento_pct"`
	Total        decimal.Decimal `json:"total"`
}

type VentaResponse struct {
	ID             string                 `json:"id"`
	NumComprobante string                 `json:"num_comprobante"`
	Detalles       []DetalleVentaResponse `json:"detalles"`
	Total          decimal.Decimal        `json:"total"`
	IGV            decimal.Decimal        `json:"igv"`
	Recibido       decimal.Decimal        `json:"recibido"`
	Vuelto         decimal.Decimal        `json:"vuelto"`
	Estado         string                 `json:"estado"`
	EstadoSunat    string                 `json:"estado_sunat"`
	CreatedAt      string                 `json:"created_at"`
}
