package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmision = "jobs:sunat:emision"
	QueueBaja    = "jobs:sunat:baja"
	QueueAlertas = "jobs:alertas"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler consumes one dequeued job payload.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// HandlerFunc adapts plain functions to Handler.
type HandlerFunc func(ctx context.Context, raw json.RawMessage)

func (f HandlerFunc) Process(ctx context.Context, raw json.RawMessage) { f(ctx, raw) }

// WorkerHandlers maps each queue to its consumer. Wired at the composition
// root so workers get the full infrastructure graph.
type WorkerHandlers struct {
	Emision Handler
	Baja    Handler
	Alertas Handler
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmision pushes a fiscal emission job.
func (d *Dispatcher) EnqueueEmision(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmision, "emision", payload)
}

// EnqueueBaja pushes a fiscal void-notice job.
func (d *Dispatcher) EnqueueBaja(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueBaja, "baja", payload)
}

// EnqueueAlerta pushes an operator alert email job.
func (d *Dispatcher) EnqueueAlerta(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueAlertas, "alerta", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueEmision, QueueBaja, QueueAlertas}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var h Handler
	switch queue {
	case QueueEmision:
		h = handlers.Emision
	case QueueBaja:
		h = handlers.Baja
	case QueueAlertas:
		h = handlers.Alertas
	}
	if h == nil {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}
	h.Process(ctx, job.Payload)
}
