package service

import (
	"context"
	"time"

	"andespos/internal/dto"
	"andespos/internal/repository"

	"github.com/google/uuid"
)

// KardexService rebuilds the chronological stock history of a product from
// its immutable movement rows.
type KardexService interface {
	ObtenerKardex(ctx context.Context, filter dto.KardexFilter) (*dto.KardexResponse, error)
}

type kardexService struct {
	movRepo  repository.MovimientoStockRepository
	prodRepo repository.ProductoRepository
}

func NewKardexService(movRepo repository.MovimientoStockRepository, prodRepo repository.ProductoRepository) KardexService {
	return &kardexService{movRepo: movRepo, prodRepo: prodRepo}
}

func (s *kardexService) ObtenerKardex(ctx context.Context, filter dto.KardexFilter) (*dto.KardexResponse, error) {
	productoID, err := uuid.Parse(filter.ProductoID)
	if err != nil {
		return nil, validationErrorf("producto_id inválido: %v", err)
	}
	producto, err := s.prodRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, &NotFoundError{Entidad: "producto", ID: filter.ProductoID}
	}

	repoFilter := repository.MovimientoStockFilter{
		ProductoID: &productoID,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.AlmacenID != "" {
		almacenID, err := uuid.Parse(filter.AlmacenID)
		if err != nil {
			return nil, validationErrorf("almacen_id inválido: %v", err)
		}
		repoFilter.AlmacenID = &almacenID
	}
	if filter.Desde != "" {
		desde, err := time.Parse("2006-01-02", filter.Desde)
		if err != nil {
			return nil, validationErrorf("desde inválido: %v", err)
		}
		repoFilter.Desde = &desde
	}
	if filter.Hasta != "" {
		hasta, err := time.Parse("2006-01-02", filter.Hasta)
		if err != nil {
			return nil, validationErrorf("hasta inválido: %v", err)
		}
		repoFilter.Hasta = &hasta
	}

	movimientos, total, err := s.movRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.KardexEntry, 0, len(movimientos))
	entradas, salidas := 0, 0
	for _, m := range movimientos {
		e := dto.KardexEntry{
			Fecha:  m.CreatedAt.Format(time.RFC3339),
			Tipo:   m.Tipo,
			Motivo: m.Motivo,
			Saldo:  m.StockNuevo,
		}
		if m.Cantidad >= 0 {
			e.Entrada = m.Cantidad
			entradas += m.Cantidad
		} else {
			e.Salida = -m.Cantidad
			salidas += -m.Cantidad
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			e.ReferenciaID = &ref
		}
		entries = append(entries, e)
	}

	return &dto.KardexResponse{
		Producto: producto.Descripcion,
		Entradas: entradas,
		Salidas:  salidas,
		Data:     entries,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}
