// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	BodySpawned        Type = "body_spawned"
	SimulationReset    Type = "simulation_reset"
	StrategyChanged    Type = "strategy_changed"
	CollisionResolved  Type = "collision_resolved"
	FrameCompleted     Type = "frame_completed"
	IndexInsertDropped Type = "index_insert_dropped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// NewEvent creates an event that carries no payload beyond its type.
func NewEvent(eventType Type, source interface{}) *BaseEvent {
	return &BaseEvent{EventType: eventType, Source: source}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a handler registration so it can be removed.
type SubscriptionID uint64

// Subscription is returned by Subscribe. Cancel removes the handler and is
// safe to call more than once.
type Subscription struct {
	ID     SubscriptionID
	Type   Type
	Cancel func()
}

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes a handler. It reports whether the subscription existed.
func (b *Bus) Unsubscribe(eventType Type, id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// HasSubscribers reports whether any handler listens for eventType. Callers
// use it to skip building events nobody will receive.
func (b *Bus) HasSubscribers(eventType Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// BodyEvent is published when a body joins the simulation.
type BodyEvent struct {
	BaseEvent
	BodyID uint64
	Radius float64
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, bodyID uint64, radius float64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		BodyID:    bodyID,
		Radius:    radius,
	}
}

// CollisionEvent contains information about a resolved body pair
type CollisionEvent struct {
	BaseEvent
	BodyA      uint64
	BodyB      uint64
	Resolution string
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, bodyA, bodyB uint64, resolution string) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent:  BaseEvent{EventType: CollisionResolved, Source: source},
		BodyA:      bodyA,
		BodyB:      bodyB,
		Resolution: resolution,
	}
}

// StrategyEvent records a switch of the detection strategy.
type StrategyEvent struct {
	BaseEvent
	From string
	To   string
}

// NewStrategyEvent creates a new strategy event
func NewStrategyEvent(source interface{}, from, to string) *StrategyEvent {
	return &StrategyEvent{
		BaseEvent: BaseEvent{EventType: StrategyChanged, Source: source},
		From:      from,
		To:        to,
	}
}

// FrameEvent carries the counters of a completed frame.
type FrameEvent struct {
	BaseEvent
	Frame      uint64
	Strategy   string
	Checks     int
	Collisions int
	Dropped    int
}

// NewFrameEvent creates a new frame event
func NewFrameEvent(source interface{}, frame uint64, strategy string, checks, collisions, dropped int) *FrameEvent {
	return &FrameEvent{
		BaseEvent:  BaseEvent{EventType: FrameCompleted, Source: source},
		Frame:      frame,
		Strategy:   strategy,
		Checks:     checks,
		Collisions: collisions,
		Dropped:    dropped,
	}
}

// DropEvent reports a body left out of the spatial index for one frame.
type DropEvent struct {
	BaseEvent
	BodyID uint64
	Reason string
}

// NewDropEvent creates a new drop event
func NewDropEvent(source interface{}, bodyID uint64, reason string) *DropEvent {
	return &DropEvent{
		BaseEvent: BaseEvent{EventType: IndexInsertDropped, Source: source},
		BodyID:    bodyID,
		Reason:    reason,
	}
}
