package dto

// ProveedorRequest creates or updates a supplier.
type ProveedorRequest struct {
	RazonSocial string  `json:"razon_social" validate:"required,min=3"`
	RUC         string  `json:"ruc"          validate:"required,len=11,numeric"`
	Telefono    *string `json:"telefono"     validate:"omitempty,min=6"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Direccion   *string `json:"direccion"`
}

type ProveedorResponse struct {
	ID          string  `json:"id"`
	RazonSocial string  `json:"razon_social"`
	RUC         string  `json:"ruc"`
	Telefono    *string `json:"telefono,omitempty"`
	Email       *string `json:"email,omitempty"`
	Direccion   *string `json:"direccion,omitempty"`
	Activo      bool    `json:"activo"`
}

type ProveedorListResponse struct {
	Data  []ProveedorResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
