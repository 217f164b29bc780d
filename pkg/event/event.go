// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Event types published by the physics world and the simulation.
const (
	BodyAdded         Type = "body_added"
	BodyRemoved       Type = "body_removed"
	JointAdded        Type = "joint_added"
	JointRemoved      Type = "joint_removed"
	JointBroken       Type = "joint_broken"
	CollisionActive   Type = "collision_active"
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
	WalkerFell        Type = "walker_fell"
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

// Subscription identifies a registered handler. Cancel removes it; calling
// Cancel more than once is harmless.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type registered struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registered
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registered),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registered{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.id == id {
			// Copy so a Publish iterating the old slice is unaffected.
			next := make([]registered, 0, len(handlers)-1)
			next = append(next, handlers[:i]...)
			b.handlers[eventType] = append(next, handlers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers, in subscription order.
// A nil bus drops the event.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h.handler(event)
	}
}

// BodyEvent reports a body entering or leaving a world.
type BodyEvent struct {
	BaseEvent
	BodyID uint64
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, bodyID uint64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		BodyID:    bodyID,
	}
}

// JointEvent reports a joint being added, removed or broken. BodyA and
// BodyB are zero for an absent (world-anchored) side.
type JointEvent struct {
	BaseEvent
	JointID uint64
	BodyA   uint64
	BodyB   uint64
	Length  float64
}

// NewJointEvent creates a new joint event
func NewJointEvent(eventType Type, source interface{}, jointID, bodyA, bodyB uint64, length float64) *JointEvent {
	return &JointEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		JointID:   jointID,
		BodyA:     bodyA,
		BodyB:     bodyB,
		Length:    length,
	}
}

// CollisionEvent contains information about a contact found this step
type CollisionEvent struct {
	BaseEvent
	BodyA   uint64
	BodyB   uint64
	Overlap float64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, bodyA, bodyB uint64, overlap float64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{EventType: CollisionActive, Source: source},
		BodyA:     bodyA,
		BodyB:     bodyB,
		Overlap:   overlap,
	}
}

// SimulationEvent reports a simulation lifecycle change
type SimulationEvent struct {
	BaseEvent
	Tick uint64
}

// NewSimulationEvent creates a new simulation event
func NewSimulationEvent(eventType Type, source interface{}, tick uint64) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Tick:      tick,
	}
}

// WalkerEvent reports a walker dying, with the fitness it reached.
type WalkerEvent struct {
	BaseEvent
	Walker  int
	Fitness float64
	Cause   string
}

// NewWalkerEvent creates a new walker event
func NewWalkerEvent(source interface{}, walker int, fitness float64, cause string) *WalkerEvent {
	return &WalkerEvent{
		BaseEvent: BaseEvent{EventType: WalkerFell, Source: source},
		Walker:    walker,
		Fitness:   fitness,
		Cause:     cause,
	}
}
