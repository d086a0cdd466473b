package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	writeTimeout   = 3 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers, sharded by the
// login identifier so events for one account keep their order. Writes are
// fire-and-forget: a full shard drops the event rather than blocking a login.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event on the shard owning its login identifier.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	ch := d.workers[d.shardIndex(event.Login)]
	select {
	case ch <- event:
	default:
		d.log.Warn().Str("login", event.Login).Msg("audit queue full, event dropped")
	}
}

func (d *Dispatcher) shardIndex(login string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(login))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			if err := d.repo.Insert(writeCtx, event); err != nil {
				d.log.Error().Err(err).
					Str("login", event.Login).
					Str("outcome", string(event.Outcome)).
					Int("worker_id", id).
					Msg("audit write failed")
			}
			cancel()
		}
	}
}
