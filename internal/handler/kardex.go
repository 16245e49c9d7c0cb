package handler

import (
	"net/http"

	"andespos/internal/dto"
	"andespos/internal/service"

	"github.com/gin-gonic/gin"
)

type KardexHandler struct{ svc service.KardexService }

func NewKardexHandler(svc service.KardexService) *KardexHandler {
	return &KardexHandler{svc: svc}
}

// Consultar godoc
// @Summary      Kardex de movimientos de un producto
// @Tags         kardex
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id query string true  "ID del producto"
// @Param        almacen_id  query string false "Limitar a un almacén"
// @Param        desde       query string false "Fecha inicio YYYY-MM-DD"
// @Param        hasta       query string false "Fecha fin YYYY-MM-DD"
// @Success      200 {object} dto.KardexResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/kardex [get]
func (h *KardexHandler) Consultar(c *gin.Context) {
	var filter dto.KardexFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ObtenerKardex(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
