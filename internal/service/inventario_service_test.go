package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventarioFixture() (InventarioService, *stubInventarioRepo, *stubMovimientoRepo) {
	invRepo := newStubInventarioRepo()
	movRepo := &stubMovimientoRepo{}
	return NewInventarioService(invRepo, movRepo, newStubProductoRepo()), invRepo, movRepo
}

func TestDescontarTx_RegistraKardex(t *testing.T) {
	svc, invRepo, movRepo := newInventarioFixture()
	productoID, almacenID := uuid.New(), uuid.New()
	invRepo.seed(productoID, almacenID, 20)

	err := svc.DescontarTx(context.Background(), nil, productoID, almacenID, 5, "venta", "Venta B001-00000001", nil)
	require.NoError(t, err)

	inv, err := invRepo.FindStock(context.Background(), productoID, almacenID)
	require.NoError(t, err)
	assert.Equal(t, 15, inv.Stock)

	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, -5, mov.Cantidad)
	assert.Equal(t, 20, mov.StockAnterior)
	assert.Equal(t, 15, mov.StockNuevo)
}

func TestDescontarTx_StockInsuficiente(t *testing.T) {
	svc, invRepo, movRepo := newInventarioFixture()
	productoID, almacenID := uuid.New(), uuid.New()
	invRepo.seed(productoID, almacenID, 3)

	err := svc.DescontarTx(context.Background(), nil, productoID, almacenID, 4, "venta", "", nil)

	var sinStock *InsufficientStockError
	require.ErrorAs(t, err, &sinStock)
	assert.Equal(t, 4, sinStock.Solicitado)
	assert.Equal(t, 3, sinStock.Disponible)

	// Nada cambió: ni stock ni kardex.
	inv, _ := invRepo.FindStock(context.Background(), productoID, almacenID)
	assert.Equal(t, 3, inv.Stock)
	assert.Empty(t, movRepo.movimientos)
}

func TestDescontarTx_SinRegistroDeInventario(t *testing.T) {
	svc, _, _ := newInventarioFixture()

	err := svc.DescontarTx(context.Background(), nil, uuid.New(), uuid.New(), 1, "venta", "", nil)

	var sinStock *InsufficientStockError
	require.ErrorAs(t, err, &sinStock)
	assert.Equal(t, 0, sinStock.Disponible)
}

func TestRestaurarTx_IncrementaYRegistra(t *testing.T) {
	svc, invRepo, movRepo := newInventarioFixture()
	productoID, almacenID := uuid.New(), uuid.New()
	invRepo.seed(productoID, almacenID, 8)

	err := svc.RestaurarTx(context.Background(), nil, productoID, almacenID, 2, "anulacion_venta", "Anulación", nil)
	require.NoError(t, err)

	inv, _ := invRepo.FindStock(context.Background(), productoID, almacenID)
	assert.Equal(t, 10, inv.Stock)

	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, 2, movRepo.movimientos[0].Cantidad)
	assert.Equal(t, 8, movRepo.movimientos[0].StockAnterior)
	assert.Equal(t, 10, movRepo.movimientos[0].StockNuevo)
}

func TestRestaurarTx_CreaRegistroInicial(t *testing.T) {
	svc, invRepo, movRepo := newInventarioFixture()
	productoID, almacenID := uuid.New(), uuid.New()

	// Primer ingreso de un producto a un almacén: la fila se crea al vuelo.
	err := svc.RestaurarTx(context.Background(), nil, productoID, almacenID, 12, "nota_ingreso", "Nota inicial", nil)
	require.NoError(t, err)

	inv, err := invRepo.FindStock(context.Background(), productoID, almacenID)
	require.NoError(t, err)
	assert.Equal(t, 12, inv.Stock)

	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, 0, movRepo.movimientos[0].StockAnterior)
	assert.Equal(t, 12, movRepo.movimientos[0].StockNuevo)
}

func TestDescontarTx_VentasConcurrentesNoSobrevenden(t *testing.T) {
	svc, invRepo, _ := newInventarioFixture()
	productoID, almacenID := uuid.New(), uuid.New()
	invRepo.seed(productoID, almacenID, 10)

	// 25 cajeros compiten por 10 unidades: el UPDATE condicionado deja pasar
	// exactamente a 10 y el stock nunca baja de cero.
	const cajeros = 25
	var wg sync.WaitGroup
	var exitos, rechazos atomic.Int32

	for i := 0; i < cajeros; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.DescontarTx(context.Background(), nil, productoID, almacenID, 1, "venta", "", nil)
			switch {
			case err == nil:
				exitos.Add(1)
			default:
				var sinStock *InsufficientStockError
				if assert.ErrorAs(t, err, &sinStock) {
					rechazos.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), exitos.Load())
	assert.Equal(t, int32(cajeros-10), rechazos.Load())
	inv, err := invRepo.FindStock(context.Background(), productoID, almacenID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Stock)
}

func TestStockDisponible_SinFilaEsCero(t *testing.T) {
	svc, _, _ := newInventarioFixture()

	stock, err := svc.StockDisponible(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}
