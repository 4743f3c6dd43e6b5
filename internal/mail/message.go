// Package mail renders and delivers outbound email: the newsletter sent to
// subscribers and the welcome note for new editors.
package mail

import (
	"context"
	"errors"
	"slices"
)

// Message is one outbound email. Recipients in Bcc never see each other.
type Message struct {
	From    string
	To      []string
	Bcc     []string
	Subject string
	HTML    string
	Text    string
}

// Recipients returns every address the message goes to.
func (m *Message) Recipients() []string {
	return slices.Concat(m.To, m.Bcc)
}

// Validate checks the fields every transport needs.
func (m *Message) Validate() error {
	switch {
	case m.From == "":
		return errors.New("mail: missing sender")
	case len(m.Recipients()) == 0:
		return errors.New("mail: no recipients")
	case m.Subject == "":
		return errors.New("mail: missing subject")
	}
	return nil
}

// Sender delivers a message and returns the transport's message ID.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
