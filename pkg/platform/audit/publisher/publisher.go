// Package publisher emits audit events to an audit.Store.
//
// Publishing is fail-open from the caller's point of view: services log an
// Emit error and carry on. In async mode Emit only enqueues, and a single
// goroutine drains the buffer into the store. A circuit breaker sheds load
// while the store is failing.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "redhope/pkg/platform/audit"
	"redhope/pkg/platform/circuit"
	"redhope/pkg/requestcontext"
)

var (
	ErrBufferFull  = errors.New("audit buffer full")
	ErrCircuitOpen = errors.New("audit circuit open")
)

const asyncPersistTimeout = 5 * time.Second

// Publisher writes audit events to a store, synchronously or through a buffer.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	breaker *circuit.Breaker

	buffer    chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// NewPublisher creates a publisher. Async mode starts its drain goroutine here.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:   store,
		logger:  slog.Default(),
		breaker: circuit.New("audit", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. Missing id, timestamp and request id are filled in
// from the context.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer == nil {
		return p.persist(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.IncBufferDropped()
		return ErrBufferFull
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if !p.breaker.Allow() {
		p.metrics.IncCircuitBreakerDropped()
		return ErrCircuitOpen
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncPersistFailures()
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.metrics.SetCircuitBreakerState(true)
			p.logger.WarnContext(ctx, "audit circuit opened", "error", err)
		}
		return err
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.metrics.SetCircuitBreakerState(false)
		p.logger.InfoContext(ctx, "audit circuit closed")
	}
	p.metrics.IncPublished()
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPersistTimeout)
		if err := p.persist(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		cancel()
	}
}

// Close drains the async buffer. Emit must not be called after Close.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}
