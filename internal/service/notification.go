package service

import (
	"context"
	"log/slog"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/events"
)

// WelcomeMailer sends the editor welcome note.
type WelcomeMailer interface {
	SendEditorWelcome(ctx context.Context, email, fullName string) (string, error)
}

// NotificationHandler turns domain events into mail.
type NotificationHandler struct {
	mailer WelcomeMailer
	logger *slog.Logger
}

// NewNotificationHandler creates the handler.
func NewNotificationHandler(mailer WelcomeMailer, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{mailer: mailer, logger: logger}
}

// Register subscribes the handler to the events it consumes.
func (h *NotificationHandler) Register(d *events.Dispatcher) {
	d.Subscribe(domain.EventRoleChanged, h.HandleRoleChanged)
}

// HandleRoleChanged welcomes users who just became editors. Other role
// changes are ignored.
func (h *NotificationHandler) HandleRoleChanged(ctx context.Context, event domain.Event) error {
	changed, ok := event.(domain.RoleChanged)
	if !ok || !changed.PromotedToEditor() {
		return nil
	}
	if changed.Email == "" {
		h.logger.Warn("editor has no email, welcome mail skipped", slog.String("user_id", changed.UserID))
		return errNoEmail
	}
	messageID, err := h.mailer.SendEditorWelcome(ctx, changed.Email, changed.FullName)
	if err != nil {
		return err
	}
	h.logger.Info("editor welcome sent", slog.String("user_id", changed.UserID), slog.String("message_id", messageID))
	return nil
}
