package mail

import (
	"context"
	"log/slog"

	domainerrors "github.com/baraza/baraza-server/internal/errors"
)

// ArticleView is one article as shown in a newsletter.
type ArticleView struct {
	Title      string
	Summary    string
	CoverImage string
}

// CategorySection groups the newsletter's articles under one category.
type CategorySection struct {
	Name     string
	Articles []ArticleView
}

// Mailer composes the application's emails and hands them to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	from     string
	subject  string
	logger   *slog.Logger
}

// NewMailer creates a mailer. subject is used for newsletters.
func NewMailer(sender Sender, renderer *Renderer, from, subject string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{sender: sender, renderer: renderer, from: from, subject: subject, logger: logger}
}

// SendNewsletter sends one message to every subscriber, addressed in Bcc.
func (m *Mailer) SendNewsletter(ctx context.Context, sections []CategorySection, subscribers []string) (string, error) {
	if len(subscribers) == 0 {
		return "", domainerrors.Validation("newsletter has no subscribers to send to")
	}

	categories := make([]map[string]any, 0, len(sections))
	for _, s := range sections {
		articles := make([]map[string]any, 0, len(s.Articles))
		for _, a := range s.Articles {
			articles = append(articles, map[string]any{
				"title":       a.Title,
				"summary":     a.Summary,
				"cover_image": a.CoverImage,
			})
		}
		categories = append(categories, map[string]any{"name": s.Name, "articles": articles})
	}

	html, text, err := m.renderer.Render(TemplateNewsletter, map[string]any{
		"subject":    m.subject,
		"categories": categories,
	})
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "render newsletter")
	}

	return m.send(ctx, &Message{
		From:    m.from,
		To:      []string{m.from},
		Bcc:     subscribers,
		Subject: m.subject,
		HTML:    html,
		Text:    text,
	})
}

// SendEditorWelcome tells a user they have become an editor.
func (m *Mailer) SendEditorWelcome(ctx context.Context, email, fullName string) (string, error) {
	if email == "" {
		return "", domainerrors.Validation("user has no email address")
	}
	html, text, err := m.renderer.Render(TemplateEditorWelcome, map[string]any{"full_name": fullName})
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "render editor welcome")
	}
	return m.send(ctx, &Message{
		From:    m.from,
		To:      []string{email},
		Subject: "Welcome to the Baraza editors",
		HTML:    html,
		Text:    text,
	})
}

func (m *Mailer) send(ctx context.Context, msg *Message) (string, error) {
	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		m.logger.Error("mail delivery failed", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
		return "", domainerrors.Wrap(err, domainerrors.CodeDelivery, "mail delivery failed")
	}
	return id, nil
}
