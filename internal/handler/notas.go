package handler

import (
	"net/http"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotasHandler struct{ svc service.NotaService }

func NewNotasHandler(svc service.NotaService) *NotasHandler {
	return &NotasHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar nota de almacén
// @Description  Crea una nota de ingreso o salida y aplica sus movimientos de stock.
// @Tags         notas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarNotaRequest true "Nota"
// @Success      201 {object} dto.NotaResponse
// @Failure      409 {object} apierror.APIError "Stock insuficiente"
// @Router       /v1/notas [post]
func (h *NotasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarNotaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarNota(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Anular godoc
// @Summary      Anular nota de almacén
// @Description  Revierte los movimientos de stock de la nota. La anulación de
// @Description  una nota de ingreso puede fallar si el stock ya fue vendido.
// @Tags         notas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la nota"
// @Success      200 {object} map[string]string
// @Failure      409 {object} apierror.APIError
// @Router       /v1/notas/{id}/anular [post]
func (h *NotasHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.AnularNota(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "nota anulada"})
}

func (h *NotasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerNota(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotasHandler) Listar(c *gin.Context) {
	var filter dto.NotaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListNotas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
