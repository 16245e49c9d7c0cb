package handler

import (
	"net/http"

	"andespos/internal/service"

	"github.com/gin-gonic/gin"
)

type PreciosHandler struct{ svc service.PrecioService }

func NewPreciosHandler(svc service.PrecioService) *PreciosHandler {
	return &PreciosHandler{svc: svc}
}

// Consultar godoc
// @Summary      Consulta de precio por código de barras
// @Description  Endpoint público para terminales verificadoras de precio.
// @Tags         precios
// @Produce      json
// @Param        codigo path string true "Código del producto"
// @Success      200 {object} dto.ConsultaPrecioResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/precio/{codigo} [get]
func (h *PreciosHandler) Consultar(c *gin.Context) {
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
