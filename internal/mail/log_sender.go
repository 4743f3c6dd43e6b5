package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// LogSender writes messages to the log instead of delivering them.
// It keeps every message it was given so callers can inspect them.
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogSender creates a log transport.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg *Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	messageID := uuid.NewString()

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	s.mu.Unlock()

	s.logger.Info("mail sent",
		slog.String("message_id", messageID),
		slog.String("subject", msg.Subject),
		slog.Int("recipients", len(msg.Recipients())),
	)
	s.logger.Debug("mail body", slog.String("message_id", messageID), slog.String("text", msg.Text))
	return messageID, nil
}

// Sent returns a copy of the messages sent so far.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
