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

type ProveedorService interface {
	Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, page, limit int) (*dto.ProveedorListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	if _, err := s.repo.FindByRUC(ctx, req.RUC); err == nil {
		return nil, errors.New("ya existe un proveedor con ese RUC")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Proveedor{
		RazonSocial: req.RazonSocial,
		RUC:         req.RUC,
		Telefono:    req.Telefono,
		Email:       req.Email,
		Direccion:   req.Direccion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "proveedor", ID: id.String()}
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Listar(ctx context.Context, page, limit int) (*dto.ProveedorListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	proveedores, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		data = append(data, *proveedorToResponse(&proveedores[i]))
	}
	return &dto.ProveedorListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "proveedor", ID: id.String()}
	}
	p.RazonSocial = req.RazonSocial
	p.RUC = req.RUC
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NotFoundError{Entidad: "proveedor", ID: id.String()}
	}
	return s.repo.SoftDelete(ctx, id)
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:          p.ID.String(),
		RazonSocial: p.RazonSocial,
		RUC:         p.RUC,
		Telefono:    p.Telefono,
		Email:       p.Email,
		Direccion:   p.Direccion,
		Activo:      p.Activo,
	}
}
