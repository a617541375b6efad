package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event represents a system event with typed data
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Handler receives events for a subscribed type.
// Handlers are invoked synchronously on the emitting goroutine and
// must not block; forward to a buffered channel for slow consumers.
type Handler func(event *Event)

// Bus is an in-process publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[int]Handler
	nextID   int
	log      zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType]map[int]Handler),
		log:      log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers a handler for an event type.
// Returns a subscription ID for use with Unsubscribe.
func (b *Bus) Subscribe(eventType EventType, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	b.handlers[eventType][id] = handler

	return id
}

// Unsubscribe removes a handler registered with Subscribe.
func (b *Bus) Unsubscribe(eventType EventType, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if hs := b.handlers[eventType]; hs != nil {
		delete(hs, id)
	}
}

// Emit publishes an event to all handlers subscribed to its type.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[eventType]))
	for _, h := range b.handlers[eventType] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitTyped publishes an event with typed data.
func (b *Bus) EmitTyped(module string, data EventData) {
	b.Emit(data.EventType(), module, convertEventDataToMap(data))
}

// convertEventDataToMap converts typed EventData to map[string]interface{}
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}
