package service

import (
	"context"
	"encoding/json"
	"time"

	"andespos/internal/dto"
	"andespos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	precioCachePrefix = "precio:"
	precioCacheTTL    = 4 * time.Hour
)

// PrecioService serves the read-only price check used by in-store terminals.
// Lookups are cached in Redis so a barcode scan never touches MySQL on the
// hot path; product updates invalidate the key.
type PrecioService interface {
	ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPrecioResponse, error)
}

type precioService struct {
	productoRepo   repository.ProductoRepository
	inventarioRepo repository.InventarioRepository
	rdb            *redis.Client
}

func NewPrecioService(
	productoRepo repository.ProductoRepository,
	inventarioRepo repository.InventarioRepository,
	rdb *redis.Client,
) PrecioService {
	return &precioService{productoRepo: productoRepo, inventarioRepo: inventarioRepo, rdb: rdb}
}

func (s *precioService) ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPrecioResponse, error) {
	key := precioCachePrefix + codigo

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp dto.ConsultaPrecioResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			// Corrupt entry: drop it and fall through to the database.
			s.rdb.Del(ctx, key)
		}
	}

	producto, err := s.productoRepo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if producto == nil || !producto.Activo {
		return nil, &NotFoundError{Entidad: "producto", ID: codigo}
	}

	stock, err := s.inventarioRepo.TotalStock(ctx, producto.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConsultaPrecioResponse{
		Codigo:      producto.Codigo,
		Descripcion: producto.Descripcion,
		Precio:      producto.Precio,
		Stock:       stock,
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, payload, precioCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("codigo", codigo).Msg("no se pudo cachear precio")
			}
		}
	}
	return resp, nil
}
