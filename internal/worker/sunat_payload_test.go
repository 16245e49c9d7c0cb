package worker

import (
	"testing"
	"time"

	"andespos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func empresaDemo() *model.Empresa {
	return &model.Empresa{
		RUC:             "20123456789",
		RazonSocial:     "COMERCIAL ANDINA S.A.C.",
		NombreComercial: "Andina",
		Direccion:       "Av. Arequipa 100",
		Departamento:    "LIMA",
		Provincia:       "LIMA",
		Distrito:        "LINCE",
		Ubigeo:          "150116",
		CodLocal:        "0000",
	}
}

func ventaDemo(tipo string) *model.Venta {
	return &model.Venta{
		FechaEmision: time.Date(2026, 3, 15, 16, 30, 0, 0, time.UTC),
		Total:        decimal.RequireFromString("118.00"),
		IGV:          decimal.RequireFromString("18.00"),
		Comprobante: &model.Comprobante{
			Tipo:        tipo,
			Serie:       "B001",
			Correlativo: "00000042",
			Numero:      "B001-00000042",
		},
		Cliente: &model.Cliente{
			DNI:     str("45678912"),
			Nombres: str("María"),
		},
		Detalles: []model.DetalleVenta{{
			Cantidad: 2,
			Precio:   decimal.RequireFromString("59.00"),
			Total:    decimal.RequireFromString("118.00"),
			Producto: &model.Producto{
				Codigo:       "P001",
				Descripcion:  "Polo algodón",
				UnidadMedida: "NIU",
			},
		}},
	}
}

func TestTipoDocCliente(t *testing.T) {
	assert.Equal(t, "1", tipoDocCliente("45678912"), "DNI de 8 dígitos")
	assert.Equal(t, "6", tipoDocCliente("20123456789"), "RUC de 11 dígitos")
	assert.Equal(t, "0", tipoDocCliente(""), "sin documento")
}

func TestBuildInvoicePayload_Boleta(t *testing.T) {
	p := buildInvoicePayload(empresaDemo(), ventaDemo(model.TipoBoleta))

	assert.Equal(t, "2.1", p.UblVersion)
	assert.Equal(t, "0101", p.TipoOperacion)
	assert.Equal(t, "03", p.TipoDoc)
	assert.Equal(t, "B001", p.Serie)
	assert.Equal(t, "00000042", p.Correlativo)
	assert.Equal(t, "PEN", p.TipoMoneda)

	assert.Equal(t, "1", p.Client.TipoDoc)
	assert.Equal(t, "45678912", p.Client.NumDoc)

	assert.InDelta(t, 100.00, p.MtoOperGravadas, 0.001)
	assert.InDelta(t, 18.00, p.MtoIGV, 0.001)
	assert.InDelta(t, 118.00, p.MtoImpVenta, 0.001)

	require.Len(t, p.Details, 1)
	d := p.Details[0]
	assert.Equal(t, "NIU", d.Unidad)
	assert.Equal(t, 2, d.Cantidad)
	// 59.00 con IGV → 50.00 de valor unitario
	assert.InDelta(t, 50.00, d.MtoValorUnitario, 0.001)
	assert.InDelta(t, 100.00, d.MtoBaseIgv, 0.001)
	assert.InDelta(t, 18.00, d.Igv, 0.001)
	assert.Equal(t, "10", d.TipAfeIgv)

	require.Len(t, p.Legends, 1)
	assert.Equal(t, "1000", p.Legends[0].Code)
	assert.Equal(t, "SON 118 CON 00/100 SOLES", p.Legends[0].Value)
}

func TestBuildInvoicePayload_FacturaConRUC(t *testing.T) {
	v := ventaDemo(model.TipoFactura)
	v.Comprobante.Serie = "F001"
	v.Cliente = &model.Cliente{
		RUC:         str("20555555551"),
		RazonSocial: str("CLIENTE EMPRESA S.A."),
	}

	p := buildInvoicePayload(empresaDemo(), v)

	assert.Equal(t, "01", p.TipoDoc)
	assert.Equal(t, "6", p.Client.TipoDoc)
	assert.Equal(t, "20555555551", p.Client.NumDoc)
	assert.Equal(t, "CLIENTE EMPRESA S.A.", p.Client.RznSocial)
}

func TestBuildInvoicePayload_LeyendaConCentimos(t *testing.T) {
	v := ventaDemo(model.TipoBoleta)
	v.Total = decimal.RequireFromString("75.40")
	v.IGV = decimal.RequireFromString("11.50")

	p := buildInvoicePayload(empresaDemo(), v)
	assert.Equal(t, "SON 75 CON 40/100 SOLES", p.Legends[0].Value)
}

func TestBuildInvoicePayload_FechaEnHoraDeLima(t *testing.T) {
	p := buildInvoicePayload(empresaDemo(), ventaDemo(model.TipoBoleta))
	// 16:30 UTC = 11:30 en Lima (UTC−5)
	assert.Equal(t, "2026-03-15T11:30:00-05:00", p.FechaEmision)
}

func TestBuildVoidedPayload(t *testing.T) {
	v := ventaDemo(model.TipoFactura)
	v.Comprobante.Serie = "F001"

	p := buildVoidedPayload(empresaDemo(), v, "error en importes")

	hoy := time.Now().In(limaTZ).Format("20060102")
	assert.Equal(t, "RA-"+hoy+"-1", p.Correlativo)
	assert.Equal(t, "2026-03-15", p.FecGeneracion)
	require.Len(t, p.Details, 1)
	assert.Equal(t, "01", p.Details[0].TipoDoc)
	assert.Equal(t, "F001", p.Details[0].Serie)
	assert.Equal(t, "error en importes", p.Details[0].Desc)
}

func TestBuildSummaryPayload_AnulaBoleta(t *testing.T) {
	p := buildSummaryPayload(empresaDemo(), ventaDemo(model.TipoBoleta))

	hoy := time.Now().In(limaTZ).Format("20060102")
	assert.Equal(t, "RC-"+hoy+"-1", p.Correlativo)
	require.Len(t, p.Details, 1)
	d := p.Details[0]
	assert.Equal(t, "03", d.TipoDoc)
	assert.Equal(t, "B001-00000042", d.Serie)
	assert.Equal(t, "3", d.Estado, "estado 3 = anulación")
	assert.InDelta(t, 118.00, d.Total, 0.001)
	assert.InDelta(t, 100.00, d.MtoOperGravadas, 0.001)
}

func TestComputeRetryBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Minute, computeRetryBackoff(1))
	assert.Equal(t, 4*time.Minute, computeRetryBackoff(2))
	assert.Equal(t, 32*time.Minute, computeRetryBackoff(5))
	assert.Equal(t, time.Hour, computeRetryBackoff(10), "el backoff se acota a una hora")
}
