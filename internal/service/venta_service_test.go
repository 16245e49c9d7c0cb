package service

import (
	"context"
	"testing"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ventaFixture struct {
	svc             VentaService
	ventaRepo       *stubVentaRepo
	comprobanteRepo *stubComprobanteRepo
	inventarioRepo  *stubInventarioRepo
	movRepo         *stubMovimientoRepo
	productoRepo    *stubProductoRepo
	clienteRepo     *stubClienteRepo

	almacenID  uuid.UUID
	productoID uuid.UUID
}

// newVentaFixture builds the full service graph over in-memory stubs:
// one cashier in one branch, one product with 10 units in stock.
func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()

	ventaRepo := newStubVentaRepo()
	comprobanteRepo := newStubComprobanteRepo()
	inventarioRepo := newStubInventarioRepo()
	movRepo := &stubMovimientoRepo{}
	usuarioRepo := newStubUsuarioRepo()
	productoRepo := newStubProductoRepo()
	clienteRepo := newStubClienteRepo()

	almacenID := uuid.New()
	sucursalID := uuid.New()
	require.NoError(t, usuarioRepo.Create(context.Background(), &model.Usuario{
		Username:   "cajero1",
		Rol:        "cajero",
		SucursalID: sucursalID,
		Sucursal:   &model.Sucursal{ID: sucursalID, Nombre: "Principal", AlmacenID: almacenID},
		Activo:     true,
	}))

	producto := &model.Producto{
		Codigo:      "7750001000017",
		Descripcion: "Gaseosa 500ml",
		Categoria:   "Bebidas",
		Precio:      decimal.RequireFromString("5.00"),
		Activo:      true,
	}
	require.NoError(t, productoRepo.Create(context.Background(), producto))
	inventarioRepo.seed(producto.ID, almacenID, 10)

	inventarioSvc := NewInventarioService(inventarioRepo, movRepo, productoRepo)
	comprobanteSvc := NewComprobanteService(comprobanteRepo)
	svc := NewVentaService(ventaRepo, comprobanteSvc, comprobanteRepo, inventarioSvc,
		usuarioRepo, productoRepo, clienteRepo, nil)

	return &ventaFixture{
		svc:             svc,
		ventaRepo:       ventaRepo,
		comprobanteRepo: comprobanteRepo,
		inventarioRepo:  inventarioRepo,
		movRepo:         movRepo,
		productoRepo:    productoRepo,
		clienteRepo:     clienteRepo,
		almacenID:       almacenID,
		productoID:      producto.ID,
	}
}

func (f *ventaFixture) requestBoleta(cantidad int) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{
		Usuario:         "cajero1",
		TipoComprobante: model.TipoBoleta,
		ClienteDoc:      "45678912",
		ClienteNombre:   "María Quispe",
		FechaEmision:    time.Now().Format(time.RFC3339),
		TasaIGV:         decimal.NewFromInt(18),
		Detalles: []dto.DetalleVentaRequest{{
			ProductoID: f.productoID.String(),
			Cantidad:   cantidad,
			Precio:     decimal.RequireFromString("5.00"),
		}},
		Pagos: []dto.PagoRequest{{Metodo: "efectivo", Monto: decimal.NewFromInt(100)}},
	}
}

func TestRegistrarVenta_Boleta(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.svc.RegistrarVenta(context.Background(), f.requestBoleta(3))
	require.NoError(t, err)

	assert.Equal(t, "B001-00000001", resp.NumComprobante)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("15.00")), "total: %s", resp.Total)
	// Precio con IGV incluido: 15.00 − 15.00/1.18 = 15.00 − 12.71 = 2.29
	assert.True(t, resp.IGV.Equal(decimal.RequireFromString("2.29")), "igv: %s", resp.IGV)
	assert.True(t, resp.Vuelto.Equal(decimal.RequireFromString("85.00")), "vuelto: %s", resp.Vuelto)
	assert.Equal(t, model.VentaCompletada, resp.Estado)
	assert.Equal(t, model.SunatPendiente, resp.EstadoSunat)

	// El stock baja y el kardex registra la salida en el mismo flujo.
	inv, err := f.inventarioRepo.FindStock(context.Background(), f.productoID, f.almacenID)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Stock)

	require.Len(t, f.movRepo.movimientos, 1)
	mov := f.movRepo.movimientos[0]
	assert.Equal(t, "venta", mov.Tipo)
	assert.Equal(t, -3, mov.Cantidad)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 7, mov.StockNuevo)
	require.NotNil(t, mov.ReferenciaID)

	// El comprobante fiscal queda como intención durable: pendiente y con
	// una ventana de recuperación para el cron.
	var comp *model.Comprobante
	for _, c := range f.comprobanteRepo.comprobantes {
		comp = c
	}
	require.NotNil(t, comp)
	assert.Equal(t, model.SunatPendiente, comp.Estado)
	require.NotNil(t, comp.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), *comp.NextRetryAt, 5*time.Second)
}

func TestRegistrarVenta_DescuentoPorLinea(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(4)
	req.Detalles[0].DescuentoPct = decimal.NewFromInt(10)

	resp, err := f.svc.RegistrarVenta(context.Background(), req)
	require.NoError(t, err)
	// 5.00 × 4 × 0.90 = 18.00
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("18.00")), "total: %s", resp.Total)
}

func TestRegistrarVenta_NotaDeVentaNoFiscal(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(1)
	req.TipoComprobante = model.TipoNotaDeVenta

	resp, err := f.svc.RegistrarVenta(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "N001-00000001", resp.NumComprobante)
	assert.Equal(t, model.SunatNoAplica, resp.EstadoSunat)

	for _, c := range f.comprobanteRepo.comprobantes {
		assert.Nil(t, c.NextRetryAt, "una nota de venta nunca entra al ciclo de reintentos")
	}
}

func TestRegistrarVenta_FacturaRequiereRUC(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(1)
	req.TipoComprobante = model.TipoFactura // ClienteDoc sigue siendo un DNI

	_, err := f.svc.RegistrarVenta(context.Background(), req)
	assert.ErrorIs(t, err, ErrFacturaRequiereRUC)
}

func TestRegistrarVenta_FacturaConRUC(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(1)
	req.TipoComprobante = model.TipoFactura
	req.ClienteDoc = "20123456789"
	req.ClienteNombre = "Comercial Andina S.A.C."

	resp, err := f.svc.RegistrarVenta(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "F001-00000001", resp.NumComprobante)

	// El cliente jurídico se creó al vuelo con el RUC como documento.
	cliente, err := f.clienteRepo.FindByDocumento(context.Background(), "20123456789")
	require.NoError(t, err)
	assert.Equal(t, "Comercial Andina S.A.C.", cliente.NombreCompleto())
}

func TestRegistrarVenta_PagoInsuficiente(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(3) // total 15.00
	req.Pagos = []dto.PagoRequest{{Metodo: "efectivo", Monto: decimal.NewFromInt(10)}}

	_, err := f.svc.RegistrarVenta(context.Background(), req)
	assert.ErrorIs(t, err, ErrPagoInsuficiente)
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestRegistrarVenta_StockInsuficiente(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.svc.RegistrarVenta(context.Background(), f.requestBoleta(11))

	var sinStock *InsufficientStockError
	require.ErrorAs(t, err, &sinStock)
	assert.Equal(t, 11, sinStock.Solicitado)
	assert.Equal(t, 10, sinStock.Disponible)

	// La guarda condicional nunca tocó el stock.
	inv, err := f.inventarioRepo.FindStock(context.Background(), f.productoID, f.almacenID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Stock)
}

func TestRegistrarVenta_TipoInvalido(t *testing.T) {
	f := newVentaFixture(t)

	req := f.requestBoleta(1)
	req.TipoComprobante = "Ticket"

	_, err := f.svc.RegistrarVenta(context.Background(), req)
	assert.ErrorIs(t, err, ErrTipoComprobanteInvalido)
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RegistrarVenta(ctx, f.requestBoleta(4))
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	// El FindByID del stub no precarga relaciones: inyecta lo que el
	// repositorio real traería con Preload.
	venta := f.ventaRepo.ventas[ventaID]
	venta.Sucursal = &model.Sucursal{AlmacenID: f.almacenID}
	venta.Detalles = []model.DetalleVenta{{ProductoID: f.productoID, Cantidad: 4}}

	require.NoError(t, f.svc.AnularVenta(ctx, ventaID, "error de digitación"))

	inv, err := f.inventarioRepo.FindStock(ctx, f.productoID, f.almacenID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Stock, "el stock vuelve a su nivel original")

	assert.Equal(t, model.VentaAnulada, venta.Estado)
	require.NotNil(t, venta.MotivoAnulacion)

	// Movimiento inverso en el kardex.
	ultimo := f.movRepo.movimientos[len(f.movRepo.movimientos)-1]
	assert.Equal(t, "anulacion_venta", ultimo.Tipo)
	assert.Equal(t, 4, ultimo.Cantidad)
}

func TestAnularVenta_DobleAnulacion(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RegistrarVenta(ctx, f.requestBoleta(1))
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	venta := f.ventaRepo.ventas[ventaID]
	venta.Sucursal = &model.Sucursal{AlmacenID: f.almacenID}
	venta.Detalles = []model.DetalleVenta{{ProductoID: f.productoID, Cantidad: 1}}

	require.NoError(t, f.svc.AnularVenta(ctx, ventaID, "primera"))
	err = f.svc.AnularVenta(ctx, ventaID, "segunda")
	assert.ErrorIs(t, err, ErrVentaAnulada)

	// La segunda anulación no duplicó la restauración.
	inv, err := f.inventarioRepo.FindStock(ctx, f.productoID, f.almacenID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Stock)
}

func TestAnularVenta_SolicitaBajaDurable(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RegistrarVenta(ctx, f.requestBoleta(2))
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	var comp *model.Comprobante
	for _, c := range f.comprobanteRepo.comprobantes {
		comp = c
	}
	require.NotNil(t, comp)
	// SUNAT ya aceptó el comprobante antes de la anulación.
	comp.Estado = model.SunatAceptado
	comp.NextRetryAt = nil

	venta := f.ventaRepo.ventas[ventaID]
	venta.Comprobante = comp
	venta.Sucursal = &model.Sucursal{AlmacenID: f.almacenID}
	venta.Detalles = []model.DetalleVenta{{ProductoID: f.productoID, Cantidad: 2}}

	require.NoError(t, f.svc.AnularVenta(ctx, ventaID, "cliente desistió"))

	// La solicitud de baja es una intención durable: aun sin dispatcher
	// (como aquí), queda agendada y el cron la encuentra vencida.
	assert.Equal(t, model.CompBajaSolicitada, comp.Estado)
	require.NotNil(t, comp.NextRetryAt)

	due, err := f.comprobanteRepo.ListPendingRetries(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.CompBajaSolicitada, due[0].Estado)
}

func TestRegistrarVenta_EntradaInvalidaEsErrorDeValidacion(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	var invalida *ValidationError

	req := f.requestBoleta(1)
	req.FechaEmision = "ayer"
	_, err := f.svc.RegistrarVenta(ctx, req)
	require.ErrorAs(t, err, &invalida, "fecha_emision inválida es corregible por el cajero")

	req = f.requestBoleta(1)
	req.ClienteDoc = "123"
	_, err = f.svc.RegistrarVenta(ctx, req)
	require.ErrorAs(t, err, &invalida, "un documento que no es DNI ni RUC es corregible")

	req = f.requestBoleta(1)
	req.Detalles[0].ProductoID = "no-es-uuid"
	_, err = f.svc.RegistrarVenta(ctx, req)
	require.ErrorAs(t, err, &invalida)
	assert.Empty(t, f.ventaRepo.ventas, "nada se persistió")
}

func TestAnularVenta_NoEncontrada(t *testing.T) {
	f := newVentaFixture(t)

	err := f.svc.AnularVenta(context.Background(), uuid.New(), "motivo")

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
