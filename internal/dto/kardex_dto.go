package dto

// KardexFilter is bound from query string of GET /v1/kardex.
type KardexFilter struct {
	ProductoID string `form:"producto_id" validate:"required,uuid"`
	AlmacenID  string `form:"almacen_id"  validate:"omitempty,uuid"`
	Desde      string `form:"desde"` // YYYY-MM-DD inclusive
	Hasta      string `form:"hasta"` // YYYY-MM-DD exclusive
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// KardexEntry is one chronological stock-ledger row with its running balance.
type KardexEntry struct {
	Fecha         string  `json:"fecha"`
	Tipo          string  `json:"tipo"`
	Motivo        string  `json:"motivo"`
	Entrada       int     `json:"entrada"`
	Salida        int     `json:"salida"`
	Saldo         int     `json:"saldo"`
	ReferenciaID  *string `json:"referencia_id,omitempty"`
}

type KardexResponse struct {
	Producto string        `json:"producto"`
	Entradas int           `json:"entradas"`
	Salidas  int           `json:"salidas"`
	Data     []KardexEntry `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}
