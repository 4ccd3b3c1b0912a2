// Package eventemitter provides typed event handling that allows registering
// listeners for named events and emitting event values to them.
//
// Each listener is called synchronously when an event is emitted. If you want
// asynchronous (non-blocking) listeners, wrap your listener in a go routine.
//
// Example:
//
//	e := eventemitter.New[string]()
//	token := e.AddListener("my-event", func(ctx context.Context, v string) { fmt.Println(v) })
//	e.Emit(ctx, "my-event", "hello") // Output: hello
//	e.RemoveListener("my-event", token)
package eventemitter

import (
	"context"
	"math/rand"
	"slices"
	"sync"
)

// ListenerToken is the token returned when a listener is added.
type ListenerToken string

func generateToken() ListenerToken {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	key := make([]byte, 6)
	for i := range key {
		key[i] = letters[rand.Intn(len(letters))]
	}
	return ListenerToken(key)
}

// Listener receives emitted event values together with the emit call's context.
type Listener[T any] func(ctx context.Context, event T)

// Target instance represents an event target tied to a specific event name.
type Target[T any] struct {
	emitter   *Emitter[T]
	eventName string
}

func NewTarget[T any](eventName string) *Target[T] {
	return &Target[T]{New[T](), eventName}
}

func (t *Target[T]) EventName() string {
	return t.eventName
}

func (t *Target[T]) AddListener(listener Listener[T]) ListenerToken {
	return t.emitter.AddListener(t.eventName, listener)
}

func (t *Target[T]) RemoveListener(token ListenerToken) bool {
	return t.emitter.RemoveListener(t.eventName, token)
}

func (t *Target[T]) RemoveAllListeners() bool {
	return t.emitter.RemoveAllListeners(t.eventName)
}

func (t *Target[T]) Emit(ctx context.Context, event T) bool {
	return t.emitter.Emit(ctx, t.eventName, event)
}

// Emitter instance supports adding multiple named events carrying values
// of type T and is safe for concurrent use.
type Emitter[T any] struct {
	mu     sync.RWMutex
	events map[string][]eventListener[T]
}

type eventListener[T any] struct {
	token   ListenerToken
	handler Listener[T]
}

// New creates a new Emitter instance.
func New[T any]() *Emitter[T] {
	return &Emitter[T]{
		events: make(map[string][]eventListener[T]),
	}
}

// AddListener adds a listener function to a specific event.
func (e *Emitter[T]) AddListener(eventName string, listener Listener[T]) ListenerToken {
	e.mu.Lock()
	defer e.mu.Unlock()

	token := generateToken()
	e.events[eventName] = append(e.events[eventName], eventListener[T]{
		token:   token,
		handler: listener,
	})
	return token
}

// RemoveListener removes a listener by token from a specific event.
func (e *Emitter[T]) RemoveListener(eventName string, token ListenerToken) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners, ok := e.events[eventName]
	if !ok {
		return false
	}
	for i, listener := range listeners {
		if listener.token == token {
			e.events[eventName] = slices.Delete(listeners, i, i+1)
			return true
		}
	}
	return false
}

// RemoveAllListeners removes all listeners for the specified event.
func (e *Emitter[T]) RemoveAllListeners(eventName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.events[eventName]; ok {
		delete(e.events, eventName)
		return true
	}
	return false
}

// Emit calls each listener synchronously for the given event, passing the event value.
func (e *Emitter[T]) Emit(ctx context.Context, eventName string, event T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listeners, ok := e.events[eventName]
	if !ok || len(listeners) == 0 {
		return false
	}
	for _, listener := range listeners {
		listener.handler(ctx, event)
	}
	return true
}
