package dto

import "github.com/shopspring/decimal"

type VarianteRequest struct {
	Color *string `json:"color"`
	Talla *string `json:"talla"`
}

type ProductoRequest struct {
	Codigo      string            `json:"codigo" validate:"required"`
	Descripcion string            `json:"descripcion" validate:"required"`
	Categoria   string            `json:"categoria" validate:"required"`
	Marca       *string           `json:"marca"`
	Precio      decimal.Decimal   `json:"precio" validate:"required,dgt=0"`
	UnidadMedida string           `json:"unidad_medida"`
	Variantes   []VarianteRequest `json:"variantes" validate:"dive"`
}

type ProductoUpdateRequest struct {
	Descripcion *string          `json:"descripcion"`
	Categoria   *string          `json:"categoria"`
	Marca       *string          `json:"marca"`
	Precio      *decimal.Decimal `json:"precio" validate:"omitempty,dgt=0"`
	Activo      *bool            `json:"activo"`
}

type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Descripcion string `form:"descripcion"`
	Categoria   string `form:"categoria"`
	// Activo: "true" (default), "false", or "all".
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// ConsultaPrecioResponse is the cached price-check payload served to the
// in-store price terminals.
type ConsultaPrecioResponse struct {
	Codigo      string          `json:"codigo"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
}
