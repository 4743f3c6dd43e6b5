// Package events delivers domain events to in-process handlers on a
// background goroutine.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/baraza/baraza-server/internal/domain"
)

// Handler reacts to one event. Errors are logged, never retried.
type Handler func(ctx context.Context, event domain.Event) error

// Emitter is what services depend on to publish events.
type Emitter interface {
	Emit(event domain.Event)
}

// Dispatcher queues events and fans them out to subscribed handlers.
type Dispatcher struct {
	handlers map[string][]Handler
	events   chan domain.Event
	logger   *slog.Logger
	wg       sync.WaitGroup
	mu       sync.RWMutex

	// protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewDispatcher creates a dispatcher with a buffer of size events.
func NewDispatcher(logger *slog.Logger, size int) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		events:   make(chan domain.Event, size),
		logger:   logger,
	}
}

// Subscribe registers h for events named name.
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Start runs the delivery loop until ctx is cancelled or Shutdown closes
// the queue. Call it once, in its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	defer d.wg.Done()

	d.logger.Info("event dispatcher starting")
	for {
		select {
		case event, ok := <-d.events:
			if !ok {
				return
			}
			d.dispatch(ctx, event)
		case <-ctx.Done():
			d.logger.Info("event dispatcher stopping")
			return
		}
	}
}

// Emit queues event. Events emitted after Shutdown, or while the queue is
// full, are dropped with a log line.
func (d *Dispatcher) Emit(event domain.Event) {
	d.shutdownMu.RLock()
	defer d.shutdownMu.RUnlock()

	if d.shutdown {
		d.logger.Warn("event emitted after shutdown", slog.String("event", event.EventName()))
		return
	}

	select {
	case d.events <- event:
	default:
		d.logger.Error("event queue full, dropping event", slog.String("event", event.EventName()))
	}
}

// Shutdown stops accepting events and delivers whatever is still queued,
// giving up when ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.shutdownMu.Lock()
	if d.shutdown {
		d.shutdownMu.Unlock()
		return nil
	}
	d.shutdown = true
	close(d.events)
	d.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range d.events {
			d.dispatch(ctx, event)
		}
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("event dispatcher drained")
		return nil
	case <-ctx.Done():
		d.logger.Warn("event drain timed out, pending events lost")
		return ctx.Err()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event domain.Event) {
	d.mu.RLock()
	handlers := d.handlers[event.EventName()]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			d.logger.Error("event handler failed",
				slog.String("event", event.EventName()),
				slog.String("error", err.Error()))
		}
	}
}
