// Package publisher decouples audit emission from persistence. Emission is
// synchronous by default; WithAsyncBuffer moves persistence onto a background
// goroutine so the request hot path never waits on the audit store.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "portalgate/pkg/platform/audit"
)

// Publisher emits audit events to a store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// When the buffer is full, events are dropped with a warning; audit loss is
// preferred over blocking request handling.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for drop/persist warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an audit event. The event's category is derived from its
// action when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.CategoryFor(audit.AuditEvent(event.Action))
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		return nil
	}
}

// List returns events recorded for a session. Exposed for tests and the ops
// surface; durable queries go to the store directly.
func (p *Publisher) List(ctx context.Context, sessionID string) ([]audit.Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}

// Close drains any buffered events and stops the background worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("persist audit event", "error", err, "action", event.Action)
		}
	}
}
