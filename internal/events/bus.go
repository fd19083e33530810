// Package events provides the in-process publish/subscribe relay that
// decouples service-layer side effects. Subscribers run after the publishing
// call has returned; a failing handler never fails the publish.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Domain event names published by the services.
const (
	RiskCreated                = "risk_created"
	RiskUpdated                = "risk_updated"
	RiskQuestionnaireSubmitted = "risk_questionnaire_submitted"
	AuditPlanned               = "audit_planned"
	AuditUpdated               = "audit_updated"
	TimesheetRecorded          = "timesheet_recorded"
	WorkingPaperUpdated        = "working_paper_updated"
	FeedbackReceived           = "feedback_received"
)

// Handler processes a single event payload. Handlers must tolerate being
// invoked after the publishing call has already returned.
type Handler func(payload any)

// Record is one entry of the published log.
type Record struct {
	Event       string
	Payload     any
	PublishedAt time.Time
}

type subscription struct {
	id      int
	handler Handler
}

// Bus is an explicit, constructed pub/sub component. It is safe for
// concurrent use; dispatch is asynchronous with per-handler panic isolation.
type Bus struct {
	logger *slog.Logger

	mu          sync.Mutex
	nextID      int
	subscribers map[string][]subscription
	published   []Record
	pending     sync.WaitGroup

	// onHandlerPanic is invoked after a recovered subscriber panic.
	onHandlerPanic func()
}

// Option configures a Bus.
type Option func(*Bus)

// WithPanicCounter registers a callback fired when a handler panic is
// recovered, typically wired to a metrics counter.
func WithPanicCounter(fn func()) Option {
	return func(b *Bus) { b.onHandlerPanic = fn }
}

// NewBus constructs an event bus.
func NewBus(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{
		logger:      logger,
		subscribers: make(map[string][]subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish records the event and dispatches it to current subscribers on a
// separate goroutine. It never blocks on handlers and never returns an error.
func (b *Bus) Publish(event string, payload any) Record {
	record := Record{Event: event, Payload: payload, PublishedAt: time.Now().UTC()}

	b.mu.Lock()
	b.published = append(b.published, record)
	subs := make([]subscription, len(b.subscribers[event]))
	copy(subs, b.subscribers[event])
	b.pending.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.pending.Done()
		for _, sub := range subs {
			b.dispatch(event, sub, payload)
		}
	}()

	return record
}

func (b *Bus) dispatch(event string, sub subscription, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("event handler panicked",
				"event", event,
				"panic", rec,
			)
			if b.onHandlerPanic != nil {
				b.onHandlerPanic()
			}
		}
	}()
	sub.handler(payload)
}

// Subscribe registers a handler for an event and returns an unsubscribe
// handle. Handlers registered for the same event run in registration order.
func (b *Bus) Subscribe(event string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers[event] = append(b.subscribers[event], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		current := b.subscribers[event]
		kept := current[:0]
		for _, sub := range current {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		b.subscribers[event] = kept
	}
}

// SubscribeAll registers a handler invoked for every event, used by bridges
// that forward events out of process. The handler receives the full record.
func (b *Bus) SubscribeAll(handler func(Record)) func() {
	unsubs := make([]func(), 0, 8)
	for _, event := range []string{
		RiskCreated, RiskUpdated, RiskQuestionnaireSubmitted,
		AuditPlanned, AuditUpdated,
		TimesheetRecorded, WorkingPaperUpdated, FeedbackReceived,
	} {
		ev := event
		unsubs = append(unsubs, b.Subscribe(ev, func(payload any) {
			handler(Record{Event: ev, Payload: payload, PublishedAt: time.Now().UTC()})
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Published returns a snapshot of the published log.
func (b *Bus) Published() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.published))
	copy(out, b.published)
	return out
}

// Clear drops all subscribers and the published log.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string][]subscription)
	b.published = nil
}

// Drain blocks until all in-flight dispatches complete. Test helper; the
// server never waits on handlers.
func (b *Bus) Drain() {
	b.pending.Wait()
}
