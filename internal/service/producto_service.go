package service

import (
	"context"
	"errors"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.ProductoRequest) (*model.Producto, error)
	Obtener(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ProductoUpdateRequest) (*model.Producto, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.ProductoRequest) (*model.Producto, error) {
	if _, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, errors.New("ya existe un producto con ese código")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Producto{
		Codigo:       req.Codigo,
		Descripcion:  req.Descripcion,
		Categoria:    req.Categoria,
		Marca:        req.Marca,
		Precio:       req.Precio,
		UnidadMedida: req.UnidadMedida,
		Activo:       true,
	}
	if p.UnidadMedida == "" {
		p.UnidadMedida = "NIU"
	}
	for _, v := range req.Variantes {
		p.Variantes = append(p.Variantes, model.ProductoVariante{Color: v.Color, Talla: v.Talla})
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "producto", ID: id.String()}
	}
	return p, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ProductoUpdateRequest) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "producto", ID: id.String()}
	}
	if req.Descripcion != nil {
		p.Descripcion = *req.Descripcion
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.Marca != nil {
		p.Marca = req.Marca
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return p, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NotFoundError{Entidad: "producto", ID: id.String()}
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return nil
}

// Price mutations invalidate the terminal cache so a stale price never
// outlives the update by more than one lookup.
func (s *productoService) invalidarCachePrecio(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "precio:"+codigo).Err()
}
