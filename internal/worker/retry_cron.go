package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues submissions whose
// next_retry_at is due: emissions stuck in "pendiente" and void notices
// stuck in "baja_solicitada". Because the comprobante row is created inside
// the sale transaction, this loop also recovers submissions whose original
// job was lost (crash between commit and enqueue).

import (
	"context"
	"time"

	"andespos/internal/dto"
	"andespos/internal/infra"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxComprobanteRetries caps transient-failure retries before the
	// voucher is parked in estado "error" and sent to the DLQ.
	MaxComprobanteRetries = 5
)

// computeRetryBackoff doubles per attempt (2m, 4m, 8m…) capped at one hour.
func computeRetryBackoff(retryCount int) time.Duration {
	d := time.Duration(1<<uint(retryCount)) * time.Minute
	if d > time.Hour {
		return time.Hour
	}
	return d
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	VentaRepo       repository.VentaRepository
	Dispatcher      *Dispatcher
	CB              *infra.CircuitBreaker
}

// StartRetryCron launches a goroutine that ticks every 30s and re-enqueues
// due submissions through the normal worker path, so they get the same
// throttle and circuit breaker treatment as first attempts.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed gateway
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	comprobantes, err := cfg.ComprobanteRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(comprobantes) == 0 {
		return
	}

	log.Info().Int("count", len(comprobantes)).Msg("retry_cron: re-enqueuing due submissions")

	for i := range comprobantes {
		comp := &comprobantes[i]

		venta, err := cfg.VentaRepo.FindByComprobanteID(ctx, comp.ID)
		if err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: venta no encontrada para comprobante")
			continue
		}

		// Push next_retry_at forward before enqueuing so a slow worker
		// doesn't cause the next tick to enqueue a duplicate.
		next := time.Now().Add(computeRetryBackoff(comp.RetryCount + 1))
		comp.NextRetryAt = &next
		if err := cfg.ComprobanteRepo.Update(ctx, comp); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: no se pudo reservar el reintento")
			continue
		}

		if comp.Estado == model.CompBajaSolicitada {
			motivo := "anulación de venta"
			if venta.MotivoAnulacion != nil {
				motivo = *venta.MotivoAnulacion
			}
			err = cfg.Dispatcher.EnqueueBaja(ctx, dto.BajaJob{
				VentaID:       venta.ID.String(),
				ComprobanteID: comp.ID.String(),
				Motivo:        motivo,
				Intento:       comp.RetryCount + 1,
			})
		} else {
			err = cfg.Dispatcher.EnqueueEmision(ctx, dto.EmisionJob{
				VentaID:       venta.ID.String(),
				ComprobanteID: comp.ID.String(),
				Intento:       comp.RetryCount + 1,
			})
		}
		if err != nil {
			log.Error().Err(err).Str("numero", comp.Numero).Msg("retry_cron: enqueue failed")
			continue
		}

		log.Info().Str("numero", comp.Numero).Int("intento", comp.RetryCount+1).
			Msg("retry_cron: reintento encolado")
	}
}
