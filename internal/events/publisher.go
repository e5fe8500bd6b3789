package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives published events. Implementations: the Kafka producer for
// production and an in-memory sink for tests and broker-less development.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards pass-update events. With an async buffer the
// sink runs behind a channel so slow brokers never stall request handlers.
type Publisher struct {
	sink   Sink
	logger *slog.Logger

	inbox chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue onto a buffered channel drained by a
// background goroutine instead of appending synchronously.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

// NewPublisher constructs a publisher over the given sink.
func NewPublisher(sink Sink, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit publishes one event. The ID and, when unset, OccurredAt are filled in
// here so callers only describe what happened.
//
// Emission failures are logged, never returned: losing an event delays a
// wallet refresh until the next poll, which must not fail the registration or
// issuance that triggered it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	event.ID = uuid.New()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logger.WarnContext(ctx, "event buffer full, dropping event",
				"type", event.Type,
				"serial", event.Serial,
			)
		}
		return
	}

	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to publish pass-update event",
			"type", event.Type,
			"serial", event.Serial,
			"error", err,
		)
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logger.Warn("failed to publish pass-update event",
				"type", event.Type,
				"serial", event.Serial,
				"error", err,
			)
		}
	}
}

// Close flushes the async buffer, if any. Safe to call more than once.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}
