// Package events provides in-process pub/sub for booking domain events.
// Events are published after the owning transaction commits; subscribers
// must never assume they can veto or roll back the change.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeLecturerDecision Type = "booking.lecturer_decision"
	TypeAdminDecision    Type = "booking.admin_decision"
	TypeCheckedIn        Type = "booking.checked_in"
	TypeCheckedOut       Type = "booking.checked_out"
	TypeNoShow           Type = "booking.no_show"
	TypeCancelled        Type = "booking.cancelled"
	TypeUserBlocked      Type = "user.blocked"
)

// Event is a lightweight domain event.
type Event struct {
	Type      Type
	BookingID uuid.UUID
	UserID    uuid.UUID
	Detail    string
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub.
type Bus struct {
	subscribers map[Type][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(t Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], handler)
}

// SubscribeAll registers a handler for every known event type.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range []Type{
		TypeBookingCreated, TypeLecturerDecision, TypeAdminDecision,
		TypeCheckedIn, TypeCheckedOut, TypeNoShow, TypeCancelled, TypeUserBlocked,
	} {
		b.Subscribe(t, handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		handler(event)
	}
}
