package service

import (
	"context"
	"errors"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"

	"gorm.io/gorm"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorDocumento(ctx context.Context, documento string) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, page, limit int) (*dto.ClienteListResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	tieneDNI := req.DNI != nil && *req.DNI != ""
	tieneRUC := req.RUC != nil && *req.RUC != ""
	if tieneDNI == tieneRUC {
		return nil, errors.New("el cliente requiere exactamente un documento: DNI o RUC")
	}
	if tieneRUC && (req.RazonSocial == nil || *req.RazonSocial == "") {
		return nil, errors.New("un cliente con RUC requiere razón social")
	}
	if tieneDNI && (req.Nombres == nil || *req.Nombres == "") {
		return nil, errors.New("un cliente con DNI requiere nombres")
	}

	cliente := &model.Cliente{
		Nombres:     req.Nombres,
		Apellidos:   req.Apellidos,
		RazonSocial: req.RazonSocial,
		DNI:         req.DNI,
		RUC:         req.RUC,
		Direccion:   req.Direccion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) ObtenerPorDocumento(ctx context.Context, documento string) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByDocumento(ctx, documento)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entidad: "cliente", ID: documento}
		}
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, page, limit int) (*dto.ClienteListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	clientes, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.NombreCompleto(),
		DNI:       c.DNI,
		RUC:       c.RUC,
		Direccion: c.Direccion,
	}
}
