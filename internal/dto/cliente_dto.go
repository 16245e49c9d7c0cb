package dto

// ClienteRequest creates a client: natural person (DNI) or legal entity (RUC).
type ClienteRequest struct {
	Nombres     *string `json:"nombres"`
	Apellidos   *string `json:"apellidos"`
	RazonSocial *string `json:"razon_social"`
	DNI         *string `json:"dni" validate:"omitempty,len=8,numeric"`
	RUC         *string `json:"ruc" validate:"omitempty,len=11,numeric"`
	Direccion   *string `json:"direccion"`
}

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	DNI       *string `json:"dni,omitempty"`
	RUC       *string `json:"ruc,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
