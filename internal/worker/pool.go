package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueReceipts = "jobs:receipts"

// MaxJobAttempts before a job is abandoned to the dead letter queue.
const MaxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one decoded job payload. A non-nil error requeues the job
// until MaxJobAttempts is reached.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt delivery job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueReceipts, "receipt", payload)
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

// Pool consumes jobs from Redis and routes them to registered handlers.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, handlers: make(map[string]Handler)}
}

// Register binds a handler to a job type. Not safe to call after Start.
func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches the worker goroutines. Each blocks on BRPOP — zero CPU when
// idle — and exits when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", p.size)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	queues := []string{QueueReceipts}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler registered")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler registered", job.Attempts)
		return
	}

	if err := handler(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= MaxJobAttempts {
			SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		log.Warn().
			Str("type", job.Type).
			Int("attempt", job.Attempts).
			Err(err).
			Msg("job failed, requeueing")
		encoded, mErr := json.Marshal(job)
		if mErr != nil {
			log.Error().Err(mErr).Msg("failed to re-encode job for retry")
			return
		}
		if pErr := p.rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
			log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
		}
	}
}
