package worker

// sunat_worker.go
// Consumes fiscal jobs: emission (QueueEmision) and void notices (QueueBaja).
// Every outbound call goes through the process-wide SubmitThrottle and the
// circuit breaker. A rejection is a verdict — it is applied and never
// retried; an outage schedules a retry via the comprobante's retry fields.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"andespos/internal/dto"
	"andespos/internal/infra"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AlertaJob is the payload queued for the operator alert worker.
type AlertaJob struct {
	Asunto string `json:"asunto"`
	Cuerpo string `json:"cuerpo"`
}

type SunatWorker struct {
	client          *infra.SunatClient
	throttle        *infra.SubmitThrottle
	cb              *infra.CircuitBreaker
	comprobanteRepo repository.ComprobanteRepository
	ventaRepo       repository.VentaRepository
	empresaRepo     repository.EmpresaRepository
	dispatcher      *Dispatcher
}

func NewSunatWorker(
	client *infra.SunatClient,
	throttle *infra.SubmitThrottle,
	cb *infra.CircuitBreaker,
	comprobanteRepo repository.ComprobanteRepository,
	ventaRepo repository.VentaRepository,
	empresaRepo repository.EmpresaRepository,
	dispatcher *Dispatcher,
) *SunatWorker {
	return &SunatWorker{
		client:          client,
		throttle:        throttle,
		cb:              cb,
		comprobanteRepo: comprobanteRepo,
		ventaRepo:       ventaRepo,
		empresaRepo:     empresaRepo,
		dispatcher:      dispatcher,
	}
}

// ProcessEmision submits one voucher for emission. Idempotent on
// re-delivery: anything not in estado "pendiente" is dropped.
func (w *SunatWorker) ProcessEmision(ctx context.Context, raw json.RawMessage) {
	var job dto.EmisionJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("sunat_worker: invalid emision payload")
		return
	}

	venta, comp, ok := w.cargarVenta(ctx, job.VentaID)
	if !ok {
		return
	}
	if comp.Estado != model.SunatPendiente {
		log.Debug().Str("numero", comp.Numero).Str("estado", comp.Estado).
			Msg("sunat_worker: emision ya resuelta, descartando")
		return
	}

	empresa, err := w.empresaRepo.FindPrincipal(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sunat_worker: empresa emisora no configurada")
		return
	}

	if err := w.throttle.Wait(ctx); err != nil {
		return // shutting down
	}

	payload := buildInvoicePayload(empresa, venta)

	var result *infra.SunatResult
	var rechazo *infra.SunatRejectionError
	cbErr := w.cb.Execute(func() error {
		res, err := w.client.SendInvoice(ctx, payload)
		if err != nil {
			var rej *infra.SunatRejectionError
			if errors.As(err, &rej) {
				// A verdict, not an outage — must not trip the breaker.
				rechazo = rej
				return nil
			}
			return err
		}
		result = res
		return nil
	})

	switch {
	case cbErr != nil:
		w.programarReintento(ctx, comp, venta, cbErr)
	case rechazo != nil:
		w.aplicarRechazo(ctx, comp, venta, rechazo)
	default:
		w.aplicarAceptacion(ctx, comp, venta, result)
	}
}

// ProcessBaja submits the fiscal void notice for an already-accepted
// voucher: a voided notice for facturas, a daily-summary line for boletas.
func (w *SunatWorker) ProcessBaja(ctx context.Context, raw json.RawMessage) {
	var job dto.BajaJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("sunat_worker: invalid baja payload")
		return
	}

	venta, comp, ok := w.cargarVenta(ctx, job.VentaID)
	if !ok {
		return
	}
	if comp.Estado != model.CompBajaSolicitada {
		log.Debug().Str("numero", comp.Numero).Str("estado", comp.Estado).
			Msg("sunat_worker: baja ya resuelta, descartando")
		return
	}

	empresa, err := w.empresaRepo.FindPrincipal(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sunat_worker: empresa emisora no configurada")
		return
	}

	if err := w.throttle.Wait(ctx); err != nil {
		return
	}

	var result *infra.SunatResult
	var rechazo *infra.SunatRejectionError
	cbErr := w.cb.Execute(func() error {
		var res *infra.SunatResult
		var err error
		if comp.Tipo == model.TipoFactura {
			res, err = w.client.SendVoided(ctx, buildVoidedPayload(empresa, venta, job.Motivo))
		} else {
			res, err = w.client.SendSummary(ctx, buildSummaryPayload(empresa, venta))
		}
		if err != nil {
			var rej *infra.SunatRejectionError
			if errors.As(err, &rej) {
				rechazo = rej
				return nil
			}
			return err
		}
		result = res
		return nil
	})

	switch {
	case cbErr != nil:
		w.programarReintento(ctx, comp, venta, cbErr)
	case rechazo != nil:
		// A rejected baja needs a human: the document remains legally issued.
		obs := fmt.Sprintf("baja rechazada [%s]: %s", rechazo.Codigo, rechazo.Descripcion)
		comp.Observaciones = &obs
		comp.NextRetryAt = nil
		_ = w.comprobanteRepo.Update(ctx, comp)
		w.alertar(ctx, "Baja de comprobante rechazada",
			fmt.Sprintf("SUNAT rechazó la baja del comprobante %s.\n%s", comp.Numero, obs))
		log.Warn().Str("numero", comp.Numero).Str("codigo", rechazo.Codigo).
			Msg("sunat_worker: baja rechazada")
	default:
		comp.Estado = model.CompBajaAceptada
		if result.Codigo != "" {
			c := result.Codigo
			comp.CodigoSunat = &c
		}
		comp.NextRetryAt = nil
		comp.LastError = nil
		_ = w.comprobanteRepo.Update(ctx, comp)
		log.Info().Str("numero", comp.Numero).Msg("sunat_worker: baja aceptada")
	}
}

func (w *SunatWorker) cargarVenta(ctx context.Context, ventaID string) (*model.Venta, *model.Comprobante, bool) {
	id, err := uuid.Parse(ventaID)
	if err != nil {
		log.Error().Str("venta_id", ventaID).Msg("sunat_worker: venta_id inválido")
		return nil, nil, false
	}
	venta, err := w.ventaRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("venta_id", ventaID).Msg("sunat_worker: venta no encontrada")
		return nil, nil, false
	}
	comp := venta.Comprobante
	if comp == nil || !comp.EsFiscal() {
		log.Warn().Str("venta_id", ventaID).Msg("sunat_worker: venta sin comprobante fiscal")
		return nil, nil, false
	}
	return venta, comp, true
}

// aplicarAceptacion is the reconciliation write for an accepted emission.
// If the sale was voided while the submission was in flight, the void
// notice is chained immediately after.
func (w *SunatWorker) aplicarAceptacion(ctx context.Context, comp *model.Comprobante, venta *model.Venta, result *infra.SunatResult) {
	comp.Estado = model.SunatAceptado
	if result.Codigo != "" {
		c := result.Codigo
		comp.CodigoSunat = &c
	}
	if len(result.Notas) > 0 {
		obs := strings.Join(result.Notas, "; ")
		comp.Observaciones = &obs
	}
	comp.NextRetryAt = nil
	comp.LastError = nil
	if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
		log.Error().Err(err).Str("numero", comp.Numero).Msg("sunat_worker: update comprobante")
		return
	}
	_ = w.ventaRepo.UpdateEstadoSunat(ctx, venta.ID, model.SunatAceptado)

	log.Info().Str("numero", comp.Numero).Str("codigo", result.Codigo).
		Msg("sunat_worker: comprobante aceptado")

	if venta.Estado == model.VentaAnulada {
		// Re-arm next_retry_at with the estado flip so the cron recovers
		// the baja if the enqueue below is lost.
		comp.Estado = model.CompBajaSolicitada
		next := time.Now().Add(computeRetryBackoff(1))
		comp.NextRetryAt = &next
		if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
			log.Error().Err(err).Str("numero", comp.Numero).
				Msg("sunat_worker: no se pudo solicitar la baja")
			return
		}
		motivo := "anulación de venta"
		if venta.MotivoAnulacion != nil {
			motivo = *venta.MotivoAnulacion
		}
		_ = w.dispatcher.EnqueueBaja(ctx, dto.BajaJob{
			VentaID:       venta.ID.String(),
			ComprobanteID: comp.ID.String(),
			Motivo:        motivo,
		})
	}
}

func (w *SunatWorker) aplicarRechazo(ctx context.Context, comp *model.Comprobante, venta *model.Venta, rej *infra.SunatRejectionError) {
	comp.Estado = model.SunatRechazado
	if rej.Codigo != "" {
		c := rej.Codigo
		comp.CodigoSunat = &c
	}
	obs := rej.Descripcion
	comp.Observaciones = &obs
	comp.NextRetryAt = nil
	if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
		log.Error().Err(err).Str("numero", comp.Numero).Msg("sunat_worker: update comprobante")
		return
	}
	_ = w.ventaRepo.UpdateEstadoSunat(ctx, venta.ID, model.SunatRechazado)

	log.Warn().Str("numero", comp.Numero).Str("codigo", rej.Codigo).
		Str("descripcion", rej.Descripcion).
		Msg("sunat_worker: comprobante rechazado")

	w.alertar(ctx, "Comprobante rechazado por SUNAT",
		fmt.Sprintf("El comprobante %s fue rechazado.\nCódigo: %s\nDetalle: %s\nLa venta sigue completada; revise el documento y reenvíelo corregido.",
			comp.Numero, rej.Codigo, rej.Descripcion))
}

func (w *SunatWorker) programarReintento(ctx context.Context, comp *model.Comprobante, venta *model.Venta, cause error) {
	comp.RetryCount++
	msg := cause.Error()
	comp.LastError = &msg

	if comp.RetryCount >= MaxComprobanteRetries {
		estadoPrevio := comp.Estado
		comp.Estado = model.SunatError
		comp.NextRetryAt = nil
		_ = w.comprobanteRepo.Update(ctx, comp)
		if estadoPrevio == model.SunatPendiente {
			_ = w.ventaRepo.UpdateEstadoSunat(ctx, venta.ID, model.SunatError)
		}

		payload := fmt.Sprintf(`{"venta_id":%q,"comprobante_id":%q}`, venta.ID, comp.ID)
		SendToDLQ(ctx, w.dispatcher.rdb, QueueEmision, "emision", []byte(payload),
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxComprobanteRetries, msg),
			comp.RetryCount)

		w.alertar(ctx, "Comprobante agotó reintentos",
			fmt.Sprintf("El comprobante %s agotó %d reintentos de envío.\nÚltimo error: %s\nPuede reenviarlo manualmente cuando el servicio se recupere.",
				comp.Numero, comp.RetryCount, msg))
		return
	}

	next := time.Now().Add(computeRetryBackoff(comp.RetryCount))
	comp.NextRetryAt = &next
	_ = w.comprobanteRepo.Update(ctx, comp)

	log.Warn().Str("numero", comp.Numero).Int("retry_count", comp.RetryCount).
		Time("next_retry_at", next).Err(cause).
		Msg("sunat_worker: envío falló, reintento programado")
}

func (w *SunatWorker) alertar(ctx context.Context, asunto, cuerpo string) {
	if err := w.dispatcher.EnqueueAlerta(ctx, AlertaJob{Asunto: asunto, Cuerpo: cuerpo}); err != nil {
		log.Warn().Err(err).Msg("sunat_worker: no se pudo encolar la alerta")
	}
}
