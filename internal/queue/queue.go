// Package queue resolves customer addresses to coordinates one at a time,
// throttled, and hands the results to storage in batches.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	kindCoordinates = "coordinates"
	kindUnresolved  = "unresolved"

	shutdownFlushTimeout = 30 * time.Second
)

// Config controls pacing and batching of the queue.
type Config struct {
	// Delay is the minimum time between the end of one lookup and the start of the next.
	Delay time.Duration
	// LookupTimeout bounds a single provider call. Zero disables the bound.
	LookupTimeout time.Duration
	// FlushEvery is the number of processed customers after which buffers are stored.
	FlushEvery int
}

// DefaultConfig returns the production pacing: 1.2s between lookups, 10s per lookup
// and a flush every 100 customers.
func DefaultConfig() Config {
	return Config{
		Delay:         1200 * time.Millisecond,
		LookupTimeout: 10 * time.Second,
		FlushEvery:    100,
	}
}

// Queue is a FIFO of customers waiting for a lookup. A single Run loop drains it;
// Enqueue may be called from any goroutine.
type Queue struct {
	log          *slog.Logger
	provider     geocoding.Provider
	providerName string
	store        repository.CoordinateStore
	clock        clockwork.Clock
	metrics      *metrics.Metrics
	cfg          Config

	wake chan struct{}

	mu          sync.Mutex
	items       []*models.Customer
	pending     map[int]struct{}
	busy        bool
	idle        chan struct{}
	runID       string
	processed   int
	lastSettled time.Time

	// owned by the Run goroutine
	coords     []models.StoredCoordinates
	unresolved []models.UnresolvedAddress
}

// New creates an idle queue. Nothing is processed until Run is called.
func New(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	store repository.CoordinateStore,
	clock clockwork.Clock,
	metrics *metrics.Metrics,
	cfg Config,
) *Queue {
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = DefaultConfig().FlushEvery
	}

	idle := make(chan struct{})
	close(idle)

	return &Queue{
		log:          log,
		provider:     provider,
		providerName: providerName,
		store:        store,
		clock:        clock,
		metrics:      metrics,
		cfg:          cfg,
		wake:         make(chan struct{}, 1),
		pending:      make(map[int]struct{}),
		idle:         idle,
	}
}

// Enqueue appends a customer unless it is already waiting. It reports whether the
// customer was added. The queue takes ownership of the customer and updates it
// in place once resolved.
func (q *Queue) Enqueue(customer *models.Customer) bool {
	return q.EnqueueAll([]*models.Customer{customer}) == 1
}

// EnqueueAll appends customers in order, skipping those already waiting, and
// returns how many were added.
func (q *Queue) EnqueueAll(customers []*models.Customer) int {
	q.mu.Lock()
	added := 0
	for _, customer := range customers {
		if customer == nil {
			continue
		}
		if customer.ID <= 0 {
			q.log.Warn("Customer without a valid ID is not queued", "name", customer.Name)
			continue
		}
		if _, ok := q.pending[customer.ID]; ok {
			continue
		}
		q.pending[customer.ID] = struct{}{}
		q.items = append(q.items, customer)
		added++
	}
	if added > 0 && !q.busy {
		q.busy = true
		q.idle = make(chan struct{})
		q.runID = uuid.NewString()
		q.log.Info("Geocoding queue started processing", "run", q.runID)
	}
	q.metrics.QueueLength.Set(float64(len(q.items)))
	q.mu.Unlock()

	if added > 0 {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}

	return added
}

// Len returns the number of customers waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Busy reports whether the queue is currently working through customers.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.busy
}

// Processed returns the number of customers taken from the queue since start.
func (q *Queue) Processed() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.processed
}

// Wait blocks until the queue is idle or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled. Buffered results are stored before
// it returns.
func (q *Queue) Run(ctx context.Context) {
	q.log.InfoContext(ctx, "Geocoding queue is running",
		"delay", q.cfg.Delay, "lookup_timeout", q.cfg.LookupTimeout, "flush_every", q.cfg.FlushEvery)

	for {
		select {
		case <-ctx.Done():
			q.stop(ctx)
			return
		case <-q.wake:
			q.drain(ctx)
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		customer, ok := q.next(ctx)
		if !ok {
			return
		}
		q.resolve(ctx, customer)
		q.settle(ctx, customer)
	}
}

// next waits out the delay since the previous lookup and pops the head of the queue.
func (q *Queue) next(ctx context.Context) (*models.Customer, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	q.mu.Lock()
	if len(q.items) == 0 {
		q.markIdle()
		q.mu.Unlock()
		return nil, false
	}
	last := q.lastSettled
	q.mu.Unlock()

	if err := q.throttle(ctx, last); err != nil {
		return nil, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	customer := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.processed++
	q.metrics.QueueLength.Set(float64(len(q.items)))

	return customer, true
}

func (q *Queue) throttle(ctx context.Context, last time.Time) error {
	if q.cfg.Delay <= 0 || last.IsZero() {
		return nil
	}

	remaining := q.cfg.Delay - q.clock.Since(last)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.clock.After(remaining):
		return nil
	}
}

func (q *Queue) resolve(ctx context.Context, customer *models.Customer) {
	log := q.log.With("customer_id", customer.ID)

	if customer.Unresolvable() {
		log.DebugContext(ctx, "Address is marked as unfound, skipping lookup")
		q.metrics.CustomersProcessed.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return
	}

	address := customer.Address()
	lookupCtx, cancel := q.lookupContext(ctx)
	defer cancel()

	start := q.clock.Now()
	coords, err := q.provider.Geocode(lookupCtx, address)
	q.metrics.RequestSeconds.WithLabelValues(q.providerName).Observe(q.clock.Since(start).Seconds())

	switch {
	case errors.Is(err, geocoding.ErrNotFound):
		log.InfoContext(ctx, "No coordinates found for address", "address", address)
		customer.GeocodeMapsCo = models.Unfound
		q.unresolved = append(q.unresolved, models.UnresolvedAddress{CustomerID: customer.ID})
		q.metrics.CustomersProcessed.WithLabelValues(metrics.OutcomeUnresolved).Inc()
	case err != nil && ctx.Err() != nil:
		log.InfoContext(ctx, "Lookup interrupted by shutdown", "address", address)
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) {
			log.WarnContext(ctx, "Lookup timed out", "address", address, "timeout", q.cfg.LookupTimeout)
		} else {
			log.ErrorContext(ctx, "Lookup failed", "address", address, "error", err)
		}
		q.metrics.APIErrors.Inc()
		q.metrics.CustomersProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
	case coords == nil:
		log.ErrorContext(ctx, "Provider returned no coordinates", "address", address)
		q.metrics.CustomersProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
	default:
		customer.Latitude = coords.Latitude
		customer.Longitude = coords.Longitude
		q.coords = append(q.coords, models.StoredCoordinates{
			Latitude:   coords.Latitude,
			Longitude:  coords.Longitude,
			CustomerID: customer.ID,
		})
		log.DebugContext(ctx, "Address resolved", "lat", coords.Latitude, "lon", coords.Longitude)
		q.metrics.CustomersProcessed.WithLabelValues(metrics.OutcomeFound).Inc()
	}
}

func (q *Queue) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.cfg.LookupTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, q.cfg.LookupTimeout)
}

// settle releases the customer and flushes every FlushEvery customers or when
// the queue ran empty. Once ctx is cancelled the flush is left to stop.
func (q *Queue) settle(ctx context.Context, customer *models.Customer) {
	q.mu.Lock()
	delete(q.pending, customer.ID)
	q.lastSettled = q.clock.Now()
	processed := q.processed
	empty := len(q.items) == 0
	q.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if processed%q.cfg.FlushEvery == 0 || empty {
		q.flush(ctx)
	}
}

// flush hands both buffers to storage. Buffers are cleared whether or not
// storage accepts them.
func (q *Queue) flush(ctx context.Context) {
	if len(q.coords) > 0 {
		batch := q.coords
		q.coords = nil
		q.metrics.Flushes.WithLabelValues(kindCoordinates).Inc()
		if err := q.store.SaveCoordinates(ctx, batch); err != nil {
			q.log.ErrorContext(ctx, "Failed to store coordinates", "count", len(batch), "error", err)
			q.metrics.FlushErrors.WithLabelValues(kindCoordinates).Inc()
		}
	}

	if len(q.unresolved) > 0 {
		batch := q.unresolved
		q.unresolved = nil
		q.metrics.Flushes.WithLabelValues(kindUnresolved).Inc()
		if err := q.store.SaveUnresolved(ctx, batch); err != nil {
			q.log.ErrorContext(ctx, "Failed to store unresolved addresses", "count", len(batch), "error", err)
			q.metrics.FlushErrors.WithLabelValues(kindUnresolved).Inc()
		}
	}
}

func (q *Queue) stop(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
	defer cancel()

	q.flush(flushCtx)

	q.mu.Lock()
	remaining := len(q.items)
	q.markIdle()
	q.mu.Unlock()

	q.log.InfoContext(ctx, "Geocoding queue stopped", "remaining", remaining)
}

// markIdle must be called with mu held.
func (q *Queue) markIdle() {
	if !q.busy {
		return
	}
	q.busy = false
	close(q.idle)
	q.log.Info("Geocoding queue is idle", "run", q.runID, "processed", q.processed)
}
