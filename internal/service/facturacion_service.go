package service

import (
	"context"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"
	"andespos/internal/worker"

	"github.com/google/uuid"
)

type FacturacionService interface {
	// ObtenerComprobante returns the voucher with its submission bookkeeping
	// for a sale.
	ObtenerComprobante(ctx context.Context, ventaID uuid.UUID) (*dto.ComprobanteResponse, error)
	// Reenviar manually re-queues a voucher whose submission failed
	// (estado "error" or "rechazado"), resetting its retry budget.
	Reenviar(ctx context.Context, comprobanteID uuid.UUID) (*dto.ComprobanteResponse, error)
}

type facturacionService struct {
	repo       repository.ComprobanteRepository
	ventaRepo  repository.VentaRepository
	dispatcher *worker.Dispatcher
}

func NewFacturacionService(
	repo repository.ComprobanteRepository,
	ventaRepo repository.VentaRepository,
	dispatcher *worker.Dispatcher,
) FacturacionService {
	return &facturacionService{repo: repo, ventaRepo: ventaRepo, dispatcher: dispatcher}
}

func (s *facturacionService) ObtenerComprobante(ctx context.Context, ventaID uuid.UUID) (*dto.ComprobanteResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, &NotFoundError{Entidad: "venta", ID: ventaID.String()}
	}
	if venta.Comprobante == nil {
		return nil, &NotFoundError{Entidad: "comprobante de la venta", ID: ventaID.String()}
	}
	return comprobanteToResponse(venta.Comprobante), nil
}

func (s *facturacionService) Reenviar(ctx context.Context, comprobanteID uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByID(ctx, comprobanteID)
	if err != nil {
		return nil, &NotFoundError{Entidad: "comprobante", ID: comprobanteID.String()}
	}
	if comp.Estado != model.SunatError && comp.Estado != model.SunatRechazado {
		return nil, ErrComprobanteNoReintentable
	}

	venta, err := s.ventaRepo.FindByComprobanteID(ctx, comp.ID)
	if err != nil {
		return nil, &NotFoundError{Entidad: "venta del comprobante", ID: comp.ID.String()}
	}

	comp.Estado = model.SunatPendiente
	comp.RetryCount = 0
	comp.LastError = nil
	now := time.Now().Add(2 * time.Minute)
	comp.NextRetryAt = &now
	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, err
	}
	_ = s.ventaRepo.UpdateEstadoSunat(ctx, venta.ID, model.SunatPendiente)

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueEmision(ctx, dto.EmisionJob{
			VentaID:       venta.ID.String(),
			ComprobanteID: comp.ID.String(),
		}); err != nil {
			return nil, err
		}
	}
	return comprobanteToResponse(comp), nil
}

func comprobanteToResponse(c *model.Comprobante) *dto.ComprobanteResponse {
	return &dto.ComprobanteResponse{
		ID:            c.ID.String(),
		Tipo:          c.Tipo,
		Numero:        c.Numero,
		Estado:        c.Estado,
		CodigoSunat:   c.CodigoSunat,
		Observaciones: c.Observaciones,
		RetryCount:    c.RetryCount,
		NextRetryAt:   c.NextRetryAt,
		LastError:     c.LastError,
	}
}
