package worker

// sunat_payload.go
// Builds the gateway JSON envelopes from persisted sales. All money math is
// done in decimal and only converted to float64 at the payload boundary.

import (
	"fmt"
	"time"

	"andespos/internal/infra"
	"andespos/internal/model"

	"github.com/shopspring/decimal"
)

const porcentajeIGV = 18

// SUNAT expects timestamps in Peru local time (UTC−5, no DST).
var limaTZ = time.FixedZone("America/Lima", -5*60*60)

var factorIGV = decimal.NewFromInt(100 + porcentajeIGV).Div(decimal.NewFromInt(100))

func companyFrom(e *model.Empresa) infra.Company {
	return infra.Company{
		RUC:             e.RUC,
		RazonSocial:     e.RazonSocial,
		NombreComercial: e.NombreComercial,
		Address: infra.CompanyAddress{
			Ubigeo:       e.Ubigeo,
			Departamento: e.Departamento,
			Provincia:    e.Provincia,
			Distrito:     e.Distrito,
			Direccion:    e.Direccion,
			CodLocal:     e.CodLocal,
		},
	}
}

// tipoDocCliente maps the client document to catálogo 06: 8 digits is a DNI,
// 11 a RUC, anything else "sin documento".
func tipoDocCliente(doc string) string {
	switch len(doc) {
	case 8:
		return "1"
	case 11:
		return "6"
	default:
		return "0"
	}
}

func tipoDocComprobante(tipo string) string {
	if tipo == model.TipoFactura {
		return "01"
	}
	return "03"
}

// sinIGV strips the tax from a tax-inclusive amount, rounded to 2 decimals.
func sinIGV(monto decimal.Decimal) decimal.Decimal {
	return monto.Div(factorIGV).Round(2)
}

func buildInvoicePayload(emp *model.Empresa, v *model.Venta) infra.InvoicePayload {
	comp := v.Comprobante
	valorVenta := v.Total.Sub(v.IGV)

	var cliente infra.InvoiceClient
	if v.Cliente != nil {
		doc := v.Cliente.Documento()
		cliente = infra.InvoiceClient{
			TipoDoc:   tipoDocCliente(doc),
			NumDoc:    doc,
			RznSocial: v.Cliente.NombreCompleto(),
		}
	}

	details := make([]infra.InvoiceDetail, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		base := sinIGV(d.Total)
		igvLinea := d.Total.Sub(base)
		det := infra.InvoiceDetail{
			Unidad:            "NIU",
			Cantidad:          d.Cantidad,
			MtoValorUnitario:  sinIGV(d.Precio).InexactFloat64(),
			MtoValorVenta:     base.InexactFloat64(),
			MtoBaseIgv:        base.InexactFloat64(),
			PorcentajeIgv:     porcentajeIGV,
			Igv:               igvLinea.InexactFloat64(),
			TipAfeIgv:         "10",
			TotalImpuestos:    igvLinea.InexactFloat64(),
			MtoPrecioUnitario: d.Precio.InexactFloat64(),
		}
		if d.Producto != nil {
			det.CodProducto = d.Producto.Codigo
			det.Descripcion = d.Producto.Descripcion
			det.Unidad = d.Producto.UnidadMedida
		}
		details = append(details, det)
	}

	entero := v.Total.Truncate(0)
	centimos := v.Total.Sub(entero).Mul(decimal.NewFromInt(100)).IntPart()

	return infra.InvoicePayload{
		UblVersion:      "2.1",
		TipoOperacion:   "0101",
		TipoDoc:         tipoDocComprobante(comp.Tipo),
		Serie:           comp.Serie,
		Correlativo:     comp.Correlativo,
		FechaEmision:    v.FechaEmision.In(limaTZ).Format(time.RFC3339),
		TipoMoneda:      "PEN",
		Client:          cliente,
		Company:         companyFrom(emp),
		MtoOperGravadas: valorVenta.InexactFloat64(),
		MtoIGV:          v.IGV.InexactFloat64(),
		TotalImpuestos:  v.IGV.InexactFloat64(),
		ValorVenta:      valorVenta.InexactFloat64(),
		SubTotal:        v.Total.InexactFloat64(),
		MtoImpVenta:     v.Total.InexactFloat64(),
		Details:         details,
		Legends: []infra.Legend{{
			Code:  "1000",
			Value: fmt.Sprintf("SON %s CON %02d/100 SOLES", entero.String(), centimos),
		}},
	}
}

// buildVoidedPayload builds the comunicación de baja for a voided factura.
func buildVoidedPayload(emp *model.Empresa, v *model.Venta, motivo string) infra.VoidedPayload {
	comp := v.Comprobante
	hoy := time.Now().In(limaTZ)
	return infra.VoidedPayload{
		Correlativo:     fmt.Sprintf("RA-%s-1", hoy.Format("20060102")),
		FecGeneracion:   v.FechaEmision.In(limaTZ).Format("2006-01-02"),
		FecComunicacion: hoy.Format("2006-01-02"),
		Company:         companyFrom(emp),
		Details: []infra.VoidedDetail{{
			TipoDoc:     tipoDocComprobante(comp.Tipo),
			Serie:       comp.Serie,
			Correlativo: comp.Correlativo,
			Desc:        motivo,
		}},
	}
}

// buildSummaryPayload builds a resumen diario carrying the boleta void as an
// estado "3" (anulación) line.
func buildSummaryPayload(emp *model.Empresa, v *model.Venta) infra.SummaryPayload {
	comp := v.Comprobante
	hoy := time.Now().In(limaTZ)

	var clienteTipo, clienteNro string
	if v.Cliente != nil {
		clienteNro = v.Cliente.Documento()
		clienteTipo = tipoDocCliente(clienteNro)
	}

	return infra.SummaryPayload{
		Correlativo:   fmt.Sprintf("RC-%s-1", hoy.Format("20060102")),
		FecGeneracion: v.FechaEmision.In(limaTZ).Format("2006-01-02"),
		FecResumen:    hoy.Format("2006-01-02"),
		Moneda:        "PEN",
		Company:       companyFrom(emp),
		Details: []infra.SummaryDetail{{
			TipoDoc:         tipoDocComprobante(comp.Tipo),
			Serie:           comp.Numero,
			Estado:          "3",
			ClienteTipo:     clienteTipo,
			ClienteNro:      clienteNro,
			Total:           v.Total.InexactFloat64(),
			MtoOperGravadas: v.Total.Sub(v.IGV).InexactFloat64(),
			MtoIGV:          v.IGV.InexactFloat64(),
		}},
	}
}
