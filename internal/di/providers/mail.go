package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/baraza/baraza-server/internal/config"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/mail"
)

// ProvideMailSender provides the mail transport selected by configuration.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Mail.Transport {
	case config.MailTransportSES:
		sender, err := mail.NewSESSender(context.Background(), mail.SESOptions{
			Region:    cfg.Mail.AWSRegion,
			AccessKey: cfg.Mail.AWSAccessKeyID,
			SecretKey: cfg.Mail.AWSSecretKey,
		}, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Mail transport ready", "transport", "ses", "region", cfg.Mail.AWSRegion)
		return sender, nil
	case config.MailTransportLog, "":
		log.Info("Mail transport ready", "transport", "log")
		return mail.NewLogSender(log.Logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}

// ProvideMailer provides the newsletter and notification mailer.
func ProvideMailer(i do.Injector) (*mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sender := do.MustInvoke[mail.Sender](i)

	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, err
	}
	return mail.NewMailer(sender, renderer, cfg.Mail.From, cfg.Mail.NewsletterSubject, log.Logger), nil
}
