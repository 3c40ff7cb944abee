// Package security provides a non-blocking audit publisher for tamper signals.
//
// Emit enqueues into a bounded ring buffer and returns immediately; a single
// background goroutine drains the buffer into the store. A slow or failing
// store never delays the read path that detected the problem. Close drains
// what is left.
package security

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "evidentia/pkg/platform/audit"
)

const batchSize = 64

type Publisher struct {
	store  audit.Store
	buffer *RingBuffer
	logger *slog.Logger
	now    func() time.Time

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithCapacity(n int) Option {
	return func(p *Publisher) { p.buffer = NewRingBuffer(n) }
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New starts the drain goroutine. Callers must Close the publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		buffer: NewRingBuffer(0),
		logger: slog.Default(),
		now:    time.Now,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Emit queues event without blocking.
func (p *Publisher) Emit(_ context.Context, event audit.SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if event.Severity == "" {
		event.Severity = audit.SeverityWarning
	}
	if p.buffer.Enqueue(event) {
		p.logger.Warn("security audit buffer full, dropped oldest event")
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.stop:
			p.flush()
			return
		}
	}
}

func (p *Publisher) flush() {
	ctx := context.Background()
	for {
		batch := p.buffer.DequeueBatch(batchSize)
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			if err := p.store.Append(ctx, e.ToEvent()); err != nil {
				p.logger.Error("security audit persistence failed",
					"action", e.Action,
					"profile_id", e.ProfileID,
					"subject", e.Subject,
					"error", err,
				)
			}
		}
	}
}

// Close stops the drain goroutine after flushing queued events.
func (p *Publisher) Close() error {
	p.once.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

// Dropped reports events lost to buffer overflow.
func (p *Publisher) Dropped() int64 { return p.buffer.Dropped() }
