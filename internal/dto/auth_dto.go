package dto

type LoginRequest struct {
	Usuario  string `json:"usuario" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Usuario   string `json:"usuario"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"`
	SucursalID string `json:"sucursal_id,omitempty"`
}
