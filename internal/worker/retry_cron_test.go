package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"andespos/internal/dto"
	"andespos/internal/infra"
	"andespos/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cronFixture struct {
	cfg             RetryCronConfig
	rdb             *redis.Client
	comprobanteRepo *stubComprobanteRepo
	ventaRepo       *stubVentaRepo
}

func newCronFixture(t *testing.T) *cronFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	comprobanteRepo := &stubComprobanteRepo{comprobantes: map[uuid.UUID]*model.Comprobante{}}
	ventaRepo := &stubVentaRepo{ventas: map[uuid.UUID]*model.Venta{}}
	return &cronFixture{
		cfg: RetryCronConfig{
			ComprobanteRepo: comprobanteRepo,
			VentaRepo:       ventaRepo,
			Dispatcher:      NewDispatcher(rdb),
			CB:              infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		},
		rdb:             rdb,
		comprobanteRepo: comprobanteRepo,
		ventaRepo:       ventaRepo,
	}
}

func (f *cronFixture) seedComprobante(estado string, vencido time.Time, retryCount int) *model.Comprobante {
	comp := &model.Comprobante{
		ID:          uuid.New(),
		Tipo:        model.TipoBoleta,
		Numero:      "B001-00000099",
		Estado:      estado,
		RetryCount:  retryCount,
		NextRetryAt: &vencido,
	}
	f.comprobanteRepo.comprobantes[comp.ID] = comp

	venta := &model.Venta{ID: uuid.New(), ComprobanteID: comp.ID, Estado: model.VentaCompletada}
	f.ventaRepo.ventas[venta.ID] = venta
	return comp
}

func TestProcessRetries_ReencolaEmisionVencida(t *testing.T) {
	f := newCronFixture(t)
	comp := f.seedComprobante(model.SunatPendiente, time.Now().Add(-time.Minute), 1)

	processRetries(context.Background(), f.cfg)

	raw, err := f.rdb.RPop(context.Background(), QueueEmision).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	var emision dto.EmisionJob
	require.NoError(t, json.Unmarshal(job.Payload, &emision))
	assert.Equal(t, comp.ID.String(), emision.ComprobanteID)
	assert.Equal(t, 2, emision.Intento)

	// La reserva empuja next_retry_at al futuro: el siguiente tick no
	// produce un duplicado.
	guardado := f.comprobanteRepo.comprobantes[comp.ID]
	assert.True(t, guardado.NextRetryAt.After(time.Now()))

	processRetries(context.Background(), f.cfg)
	n, err := f.rdb.LLen(context.Background(), QueueEmision).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessRetries_BajaSolicitadaVaASuCola(t *testing.T) {
	f := newCronFixture(t)
	f.seedComprobante(model.CompBajaSolicitada, time.Now().Add(-time.Minute), 0)

	processRetries(context.Background(), f.cfg)

	raw, err := f.rdb.RPop(context.Background(), QueueBaja).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "baja", job.Type)
}

func TestProcessRetries_IgnoraNoVencidosYTerminales(t *testing.T) {
	f := newCronFixture(t)
	f.seedComprobante(model.SunatPendiente, time.Now().Add(time.Hour), 0) // aún no vence
	f.seedComprobante(model.SunatAceptado, time.Now().Add(-time.Hour), 0)
	f.seedComprobante(model.SunatRechazado, time.Now().Add(-time.Hour), 0)

	processRetries(context.Background(), f.cfg)

	n, err := f.rdb.LLen(context.Background(), QueueEmision).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessRetries_CircuitoAbiertoNoEncola(t *testing.T) {
	f := newCronFixture(t)
	f.seedComprobante(model.SunatPendiente, time.Now().Add(-time.Minute), 0)

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Hour})
	require.Error(t, cb.Execute(func() error { return context.DeadlineExceeded }))
	f.cfg.CB = cb

	processRetries(context.Background(), f.cfg)

	n, err := f.rdb.LLen(context.Background(), QueueEmision).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "con el circuito abierto el cron no insiste")
}
