package dto

import "time"

// EmisionJob is the payload queued for the billing worker after a fiscal
// sale commits. VentaID is enough to rebuild the envelope from the database,
// but Intento travels with the job so the worker can apply backoff.
type EmisionJob struct {
	VentaID       string `json:"venta_id"`
	ComprobanteID string `json:"comprobante_id"`
	Intento       int    `json:"intento"`
}

// BajaJob is queued when a fiscal sale is voided: a voided notice for
// invoices, a daily-summary line for receipts.
type BajaJob struct {
	VentaID       string `json:"venta_id"`
	ComprobanteID string `json:"comprobante_id"`
	Motivo        string `json:"motivo"`
	Intento       int    `json:"intento"`
}

type ComprobanteResponse struct {
	ID           string     `json:"id"`
	Tipo         string     `json:"tipo"`
	Numero       string     `json:"numero"`
	Estado       string     `json:"estado"`
	CodigoSunat  *string    `json:"codigo_sunat,omitempty"`
	Observaciones *string   `json:"observaciones,omitempty"`
	RetryCount   int        `json:"retry_count"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	LastError    *string    `json:"last_error,omitempty"`
}

type ReenviarRequest struct {
	ComprobanteID string `json:"comprobante_id" validate:"required,uuid4"`
}
