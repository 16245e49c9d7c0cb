package service

import (
	"context"
	"errors"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService is the stock ledger: every mutation goes through
// DescontarTx/RestaurarTx, which pair the Inventario update with exactly one
// kardex row inside the caller's transaction. Nothing else in the codebase
// writes stock.
type InventarioService interface {
	// DescontarTx decrements stock inside tx. Fails with
	// *InsufficientStockError when the warehouse can't cover the quantity.
	DescontarTx(ctx context.Context, tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) error
	// RestaurarTx increments stock inside tx, creating the inventory row for
	// first-time (producto, almacén) pairs.
	RestaurarTx(ctx context.Context, tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) error
	StockDisponible(ctx context.Context, productoID, almacenID uuid.UUID) (int, error)
	ListarPorAlmacen(ctx context.Context, almacenID uuid.UUID) ([]dto.StockItem, error)
}

type inventarioService struct {
	repo     repository.InventarioRepository
	movRepo  repository.MovimientoStockRepository
	prodRepo repository.ProductoRepository
}

func NewInventarioService(
	repo repository.InventarioRepository,
	movRepo repository.MovimientoStockRepository,
	prodRepo repository.ProductoRepository,
) InventarioService {
	return &inventarioService{repo: repo, movRepo: movRepo, prodRepo: prodRepo}
}

func (s *inventarioService) DescontarTx(ctx context.Context, tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) error {
	inv, err := s.repo.FindStockTx(tx, productoID, almacenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InsufficientStockError{
				Producto:   s.nombreProducto(ctx, productoID),
				Solicitado: cantidad,
				Disponible: 0,
			}
		}
		return err
	}

	rows, err := s.repo.DescontarTx(tx, productoID, almacenID, cantidad)
	if err != nil {
		return err
	}
	if rows == 0 {
		// The guarded UPDATE matched nothing: stock < cantidad.
		return &InsufficientStockError{
			Producto:   s.nombreProducto(ctx, productoID),
			Solicitado: cantidad,
			Disponible: inv.Stock,
		}
	}

	return s.movRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		AlmacenID:     almacenID,
		Tipo:          tipo,
		Cantidad:      -cantidad,
		StockAnterior: inv.Stock,
		StockNuevo:    inv.Stock - cantidad,
		Motivo:        motivo,
		ReferenciaID:  refID,
	})
}

func (s *inventarioService) RestaurarTx(ctx context.Context, tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int, tipo, motivo string, refID *uuid.UUID) error {
	stockAntes := 0
	inv, err := s.repo.FindStockTx(tx, productoID, almacenID)
	switch {
	case err == nil:
		stockAntes = inv.Stock
		rows, err := s.repo.RestaurarTx(tx, productoID, almacenID, cantidad)
		if err != nil {
			return err
		}
		if rows == 0 {
			return gorm.ErrRecordNotFound
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First movement of this product in this warehouse.
		if err := s.repo.CreateTx(tx, &model.Inventario{
			ProductoID: productoID,
			AlmacenID:  almacenID,
			Stock:      cantidad,
		}); err != nil {
			return err
		}
	default:
		return err
	}

	return s.movRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		AlmacenID:     almacenID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: stockAntes,
		StockNuevo:    stockAntes + cantidad,
		Motivo:        motivo,
		ReferenciaID:  refID,
	})
}

func (s *inventarioService) StockDisponible(ctx context.Context, productoID, almacenID uuid.UUID) (int, error) {
	inv, err := s.repo.FindStock(ctx, productoID, almacenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return inv.Stock, nil
}

func (s *inventarioService) ListarPorAlmacen(ctx context.Context, almacenID uuid.UUID) ([]dto.StockItem, error) {
	invs, err := s.repo.ListByAlmacen(ctx, almacenID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItem, 0, len(invs))
	for _, inv := range invs {
		item := dto.StockItem{
			ProductoID: inv.ProductoID.String(),
			Stock:      inv.Stock,
		}
		if inv.Producto != nil {
			item.Codigo = inv.Producto.Codigo
			item.Descripcion = inv.Producto.Descripcion
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *inventarioService) nombreProducto(ctx context.Context, id uuid.UUID) string {
	p, err := s.prodRepo.FindByID(ctx, id)
	if err != nil {
		return id.String()
	}
	return p.Descripcion
}
