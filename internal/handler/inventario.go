package handler

import (
	"net/http"

	"andespos/internal/apierror"
	"andespos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Listar godoc
// @Summary      Stock por almacén
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        almacen_id path string true "ID del almacén"
// @Success      200 {array} dto.StockItem
// @Router       /v1/inventario/{almacen_id} [get]
func (h *InventarioHandler) Listar(c *gin.Context) {
	almacenID, err := uuid.Parse(c.Param("almacen_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de almacén inválido"))
		return
	}
	items, err := h.svc.ListarPorAlmacen(c.Request.Context(), almacenID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
