package handler

import (
	"net/http"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturacionHandler struct{ svc service.FacturacionService }

func NewFacturacionHandler(svc service.FacturacionService) *FacturacionHandler {
	return &FacturacionHandler{svc: svc}
}

// Obtener godoc
// @Summary      Estado del comprobante de una venta
// @Tags         facturacion
// @Produce      json
// @Security     BearerAuth
// @Param        venta_id path string true "ID de la venta"
// @Success      200 {object} dto.ComprobanteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturacion/{venta_id} [get]
func (h *FacturacionHandler) Obtener(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("venta_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de venta inválido"))
		return
	}
	resp, err := h.svc.ObtenerComprobante(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reenviar godoc
// @Summary      Reenviar comprobante fallido
// @Description  Reinicia el ciclo de reintentos de un comprobante en estado
// @Description  error o rechazado, tras corregir la causa.
// @Tags         facturacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ReenviarRequest true "Comprobante a reenviar"
// @Success      202 {object} dto.ComprobanteResponse
// @Failure      409 {object} apierror.APIError "Estado no reintentable"
// @Router       /v1/facturacion/reenviar [post]
func (h *FacturacionHandler) Reenviar(c *gin.Context) {
	var req dto.ReenviarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := uuid.Parse(req.ComprobanteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de comprobante inválido"))
		return
	}
	resp, err := h.svc.Reenviar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
