package dto

// NotaFilter is bound from query string of GET /v1/notas.
type NotaFilter struct {
	Tipo      string `form:"tipo"` // ingreso | salida
	AlmacenID string `form:"almacen_id"`
	Fecha     string `form:"fecha"` // YYYY-MM-DD
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type DetalleNotaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// RegistrarNotaRequest creates a warehouse entry or exit note.
type RegistrarNotaRequest struct {
	Usuario     string               `json:"usuario"      validate:"required"`
	Tipo        string               `json:"tipo"         validate:"required,oneof=ingreso salida"`
	AlmacenID   string               `json:"almacen_id"   validate:"required,uuid"`
	ProveedorID *string              `json:"proveedor_id" validate:"omitempty,uuid"`
	Glosa       string               `json:"glosa"        validate:"required,min=3"`
	Fecha       string               `json:"fecha"        validate:"required"` // YYYY-MM-DD
	Detalles    []DetalleNotaRequest `json:"detalles"     validate:"required,min=1,dive"`
}

type DetalleNotaResponse struct {
	Producto string `json:"producto"`
	Cantidad int    `json:"cantidad"`
}

type NotaResponse struct {
	ID        string                `json:"id"`
	Tipo      string                `json:"tipo"`
	Almacen   string                `json:"almacen"`
	Proveedor *string               `json:"proveedor,omitempty"`
	Glosa     string                `json:"glosa"`
	Fecha     string                `json:"fecha"`
	Estado    string                `json:"estado"`
	Detalles  []DetalleNotaResponse `json:"detalles"`
}

type NotaListResponse struct {
	Data  []NotaResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
