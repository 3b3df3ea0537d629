package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrHandlersNotRegistered matches every *HandlersNotRegisteredError.
var ErrHandlersNotRegistered = errors.New("handlers not registered")

// HandlersNotRegisteredError means the mediator was wired without a
// handler for Type. It indicates a configuration bug.
type HandlersNotRegisteredError struct {
	Type reflect.Type
}

func (e *HandlersNotRegisteredError) Error() string {
	return fmt.Sprintf("handlers have not been registered for: %s", e.Type)
}

func (e *HandlersNotRegisteredError) Unwrap() error { return ErrHandlersNotRegistered }

type CommandHandler[C any, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

type EventHandler[E any] interface {
	Handle(ctx context.Context, e E) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc[E any] func(ctx context.Context, e E) error

func (f EventHandlerFunc[E]) Handle(ctx context.Context, e E) error { return f(ctx, e) }

type handlerFunc func(ctx context.Context, v any) (any, error)

type eventFunc func(ctx context.Context, v any) error

// Mediator routes commands to an ordered list of handlers, queries to a
// single handler and events to an ordered list of subscribers.
type Mediator struct {
	mu       sync.RWMutex
	commands map[reflect.Type][]handlerFunc
	queries  map[reflect.Type]handlerFunc
	events   map[reflect.Type][]eventFunc
}

func New() *Mediator {
	return &Mediator{
		commands: make(map[reflect.Type][]handlerFunc),
		queries:  make(map[reflect.Type]handlerFunc),
		events:   make(map[reflect.Type][]eventFunc),
	}
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// RegisterCommand appends handlers for commands of type C.
func RegisterCommand[C any, R any](m *Mediator, handlers ...CommandHandler[C, R]) {
	t := typeOf[C]()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range handlers {
		h := h
		m.commands[t] = append(m.commands[t], func(ctx context.Context, v any) (any, error) {
			return h.Handle(ctx, v.(C))
		})
	}
}

// RegisterQuery sets the handler for queries of type Q, replacing any
// previous one.
func RegisterQuery[Q any, R any](m *Mediator, h QueryHandler[Q, R]) {
	t := typeOf[Q]()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[t] = func(ctx context.Context, v any) (any, error) {
		return h.Handle(ctx, v.(Q))
	}
}

// RegisterEvent appends subscribers for events of type E.
func RegisterEvent[E any](m *Mediator, handlers ...EventHandler[E]) {
	t := typeOf[E]()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range handlers {
		h := h
		m.events[t] = append(m.events[t], func(ctx context.Context, v any) error {
			return h.Handle(ctx, v.(E))
		})
	}
}

// HandleCommand runs every handler registered for the runtime type of cmd,
// in registration order, and collects their results. The first handler
// error is returned as is.
func (m *Mediator) HandleCommand(ctx context.Context, cmd any) ([]any, error) {
	t := reflect.TypeOf(cmd)
	m.mu.RLock()
	handlers := m.commands[t]
	m.mu.RUnlock()
	if len(handlers) == 0 {
		return nil, &HandlersNotRegisteredError{Type: t}
	}
	results := make([]any, 0, len(handlers))
	for _, h := range handlers {
		res, err := h(ctx, cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// HandleQuery runs the handler registered for the runtime type of q.
func (m *Mediator) HandleQuery(ctx context.Context, q any) (any, error) {
	t := reflect.TypeOf(q)
	m.mu.RLock()
	h, ok := m.queries[t]
	m.mu.RUnlock()
	if !ok {
		return nil, &HandlersNotRegisteredError{Type: t}
	}
	return h(ctx, q)
}

// Publish delivers each event to every subscriber in registration order.
// A failing subscriber does not stop the others; all failures come back
// joined. Events nobody subscribed to are dropped.
func (m *Mediator) Publish(ctx context.Context, events ...any) error {
	var errs []error
	for _, e := range events {
		m.mu.RLock()
		subs := m.events[reflect.TypeOf(e)]
		m.mu.RUnlock()
		for _, s := range subs {
			if err := s(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Mediator) HasCommand(cmd any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.commands[reflect.TypeOf(cmd)]) > 0
}

func (m *Mediator) HasQuery(q any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.queries[reflect.TypeOf(q)]
	return ok
}

// Send dispatches cmd and returns the first handler's result as R.
func Send[R any](ctx context.Context, m *Mediator, cmd any) (R, error) {
	var zero R
	results, err := m.HandleCommand(ctx, cmd)
	if err != nil {
		return zero, err
	}
	r, ok := results[0].(R)
	if !ok && results[0] != nil {
		return zero, fmt.Errorf("mediator: %T returned %T, want %T", cmd, results[0], zero)
	}
	return r, nil
}

// Ask dispatches q and returns its result as R.
func Ask[R any](ctx context.Context, m *Mediator, q any) (R, error) {
	var zero R
	res, err := m.HandleQuery(ctx, q)
	if err != nil {
		return zero, err
	}
	r, ok := res.(R)
	if !ok && res != nil {
		return zero, fmt.Errorf("mediator: %T returned %T, want %T", q, res, zero)
	}
	return r, nil
}
