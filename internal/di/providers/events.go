package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/baraza/baraza-server/internal/events"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/mail"
	"github.com/baraza/baraza-server/internal/service"
)

// eventBufferSize bounds the number of queued domain events.
const eventBufferSize = 256

// DispatcherHandle wraps the event dispatcher with its context for lifecycle management.
type DispatcherHandle struct {
	*events.Dispatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DispatcherHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Dispatcher.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideDispatcher provides the domain event dispatcher with its
// handlers subscribed.
func ProvideDispatcher(i do.Injector) (*DispatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	mailer := do.MustInvoke[*mail.Mailer](i)

	dispatcher := events.NewDispatcher(log.Logger, eventBufferSize)
	service.NewNotificationHandler(mailer, log.Logger).Register(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Start(ctx)

	log.Info("Event dispatcher started")

	return &DispatcherHandle{Dispatcher: dispatcher, cancel: cancel}, nil
}
