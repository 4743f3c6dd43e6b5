package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// maxSESRecipients is the SES limit on To, Cc and Bcc addresses per message.
const maxSESRecipients = 50

// sesAPI is the part of the SES v2 client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESOptions configures the SES transport. Empty keys fall back to the
// default AWS credential chain.
type SESOptions struct {
	Region    string
	AccessKey string
	SecretKey string
}

// SESSender delivers mail through AWS SES v2.
type SESSender struct {
	client sesAPI
	logger *slog.Logger
}

// NewSESSender loads AWS configuration and builds the client.
func NewSESSender(ctx context.Context, opts SESOptions, logger *slog.Logger) (*SESSender, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(cfg), logger), nil
}

func newSESSender(client sesAPI, logger *slog.Logger) *SESSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SESSender{client: client, logger: logger}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	content := &types.EmailContent{
		Simple: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}

	// Bcc lists beyond the per-message limit go out as several messages,
	// each carrying the full To list and one batch of Bcc addresses.
	batches := bccBatches(msg.Bcc, maxSESRecipients-len(msg.To))
	if batches == nil {
		return "", fmt.Errorf("ses send: %d To addresses leave no room for Bcc", len(msg.To))
	}

	var messageID string
	for i, bcc := range batches {
		out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress: aws.String(msg.From),
			Destination: &types.Destination{
				ToAddresses:  msg.To,
				BccAddresses: bcc,
			},
			Content: content,
		})
		if err != nil {
			if i > 0 {
				s.logger.Error("ses send stopped part way",
					slog.String("message_id", messageID),
					slog.Int("batches_sent", i),
					slog.Int("batches_total", len(batches)),
				)
			}
			return "", fmt.Errorf("ses send: %w", err)
		}
		if i == 0 {
			messageID = aws.ToString(out.MessageId)
		}
	}

	s.logger.Info("mail sent via ses",
		slog.String("message_id", messageID),
		slog.Int("recipients", len(msg.Recipients())),
		slog.Int("batches", len(batches)),
	)
	return messageID, nil
}

// bccBatches splits bcc into runs of at most size addresses. An empty list
// yields one empty batch so the To recipients still get the message. It
// returns nil when size leaves no room for any Bcc address.
func bccBatches(bcc []string, size int) [][]string {
	if len(bcc) == 0 {
		return [][]string{nil}
	}
	if size <= 0 {
		return nil
	}
	batches := make([][]string, 0, (len(bcc)+size-1)/size)
	for start := 0; start < len(bcc); start += size {
		end := min(start+size, len(bcc))
		batches = append(batches, bcc[start:end])
	}
	return batches
}
