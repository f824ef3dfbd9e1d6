package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type job struct {
	key string
	fn  func(ctx context.Context)
}

// Dispatcher runs jobs on a fixed set of workers using consistent hashing on
// the job key, guaranteeing per-key ordering. It satisfies ports.Scheduler.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Schedule sends fn to the worker responsible for key. It never blocks: when
// that worker already holds channelBuffer pending jobs the job is dropped and
// Schedule returns false.
func (d *Dispatcher) Schedule(key string, fn func(ctx context.Context)) bool {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- job{key: key, fn: fn}:
	default:
		metrics.ResolveJobsDroppedTotal.Inc()
		d.log.Warn().Str("key", key).Int("worker_id", idx).Msg("worker queue full, job dropped")
		return false
	}
	metrics.ResolveQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return true
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := metrics.ResolveQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.run(ctx, id, j)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("key", j.key).
				Int("worker_id", id).
				Msg("job panicked")
		}
	}()
	j.fn(ctx)
}
