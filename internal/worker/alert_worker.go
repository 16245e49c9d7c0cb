package worker

// alert_worker.go
// Consumes operator alert jobs from QueueAlertas and delivers them to the
// configured alert address via SMTP.

import (
	"context"
	"encoding/json"

	"andespos/internal/infra"

	"github.com/rs/zerolog/log"
)

type AlertWorker struct {
	mailer     *infra.Mailer
	alertEmail string
}

func NewAlertWorker(mailer *infra.Mailer, alertEmail string) *AlertWorker {
	return &AlertWorker{mailer: mailer, alertEmail: alertEmail}
}

// Process sends one alert email. Best effort: delivery failures are logged,
// never retried — the alert's substance is already persisted on the
// comprobante row.
func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertaJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if w.alertEmail == "" {
		log.Debug().Str("asunto", payload.Asunto).Msg("alert_worker: sin destinatario configurado")
		return
	}

	if err := w.mailer.SendAlerta(w.alertEmail, payload.Asunto, payload.Cuerpo); err != nil {
		log.Error().Err(err).Str("to", w.alertEmail).Msg("alert_worker: failed to send alert")
		return
	}
	log.Info().Str("to", w.alertEmail).Str("asunto", payload.Asunto).Msg("alert_worker: alerta enviada")
}
