package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"andespos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respuestaPara(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w
}

func TestRespondError_MapeaErroresDeDominio(t *testing.T) {
	cases := []struct {
		nombre string
		err    error
		status int
	}{
		{"entrada inválida", &service.ValidationError{Detalle: "fecha_emision inválida"}, http.StatusUnprocessableEntity},
		{"no encontrado", &service.NotFoundError{Entidad: "venta", ID: "x"}, http.StatusNotFound},
		{"sin stock", &service.InsufficientStockError{Producto: "Gaseosa", Solicitado: 2, Disponible: 1}, http.StatusConflict},
		{"ya anulada", service.ErrVentaAnulada, http.StatusConflict},
		{"pago insuficiente", service.ErrPagoInsuficiente, http.StatusUnprocessableEntity},
		{"interno", errors.New("conexión perdida"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := respuestaPara(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.nombre)
	}
}
