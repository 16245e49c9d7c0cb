package service

import (
	"errors"
	"fmt"
)

// Business errors shared by the service layer. Handlers map them to HTTP
// status codes; the messages are user-facing.

var (
	// ErrVentaAnulada rejects a second void of the same sale.
	ErrVentaAnulada = errors.New("la venta ya está anulada")

	// ErrNotaAnulada rejects a second void of the same warehouse note.
	ErrNotaAnulada = errors.New("la nota ya está anulada")

	// ErrPagoInsuficiente rejects sales whose payments don't cover the total.
	ErrPagoInsuficiente = errors.New("el monto total de pagos es insuficiente")

	// ErrFacturaRequiereRUC rejects facturas whose client document is not an
	// 11-digit RUC.
	ErrFacturaRequiereRUC = errors.New("una factura requiere un cliente con RUC de 11 dígitos")

	// ErrTipoComprobanteInvalido rejects unknown document types.
	ErrTipoComprobanteInvalido = errors.New("tipo de comprobante no soportado")

	// ErrComprobanteNoReintentable rejects manual re-submission of vouchers
	// that are not in a failed state.
	ErrComprobanteNoReintentable = errors.New("el comprobante no está en un estado reintentable")
)

// ValidationError marks request input the caller can correct; handlers map
// it to a 4xx instead of a generic 500.
type ValidationError struct {
	Detalle string
}

func (e *ValidationError) Error() string { return e.Detalle }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detalle: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies a missing entity by kind and lookup key.
type NotFoundError struct {
	Entidad string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entidad, e.ID)
}

// InsufficientStockError carries enough detail for the cashier to correct
// the sale: which product failed, what was asked, what was available.
type InsufficientStockError struct {
	Producto   string
	Solicitado int
	Disponible int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d",
		e.Producto, e.Solicitado, e.Disponible)
}
