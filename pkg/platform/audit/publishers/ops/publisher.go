// Package ops provides a best-effort publisher for routine operations events.
//
// Track never fails the caller. Events may be sampled down per action, and a
// circuit breaker skips the store entirely while it keeps failing.
//
// Use for: record_updated, pack_signed, gap_explained.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "evidentia/pkg/platform/audit"
)

type Publisher struct {
	store   audit.Store
	sampler *Sampler
	breaker *CircuitBreaker
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithSampler replaces the default keep-everything sampler.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) { p.sampler = s }
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) { p.breaker = cb }
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.sampler == nil {
		p.sampler = NewSampler(1)
	}
	if p.breaker == nil {
		p.breaker = NewCircuitBreaker(0, 0, p.now)
	}
	return p
}

// Track records an operations event if sampling and the breaker allow it.
func (p *Publisher) Track(ctx context.Context, event audit.OpsEvent) {
	if !p.sampler.ShouldSample(event.Action) {
		if p.metrics != nil {
			p.metrics.Sampled.Inc()
		}
		return
	}
	if !p.breaker.Allow() {
		if p.metrics != nil {
			p.metrics.CircuitBreakerDropped.Inc()
		}
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}

	if err := p.store.Append(ctx, event.ToEvent()); err != nil {
		p.breaker.RecordFailure()
		if p.metrics != nil {
			p.metrics.PersistFailures.Inc()
			p.metrics.setCircuitBreakerState(p.breaker.IsOpen())
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "ops audit event dropped",
				"action", event.Action,
				"profile_id", event.ProfileID,
				"error", err,
			)
		}
		return
	}
	p.breaker.RecordSuccess()
	if p.metrics != nil {
		p.metrics.Tracked.Inc()
		p.metrics.setCircuitBreakerState(false)
	}
}
