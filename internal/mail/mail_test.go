package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, sender Sender) *Mailer {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	return NewMailer(sender, renderer, "news@baraza.test", "Baraza newsletter", logger.Discard())
}

func TestTruncateSummary(t *testing.T) {
	summary := strings.Repeat("*", 75) + " " + strings.Repeat("$", 80)
	want := strings.Repeat("*", 75) + " " + strings.Repeat("$", 74) + "..."
	assert.Equal(t, want, TruncateSummary(summary, SummaryLength))

	assert.Equal(t, "short", TruncateSummary("short", SummaryLength))
}

func TestMailer_SendNewsletter(t *testing.T) {
	sender := NewLogSender(logger.Discard())
	m := newTestMailer(t, sender)

	id, err := m.SendNewsletter(context.Background(), []CategorySection{
		{Name: "Science", Articles: []ArticleView{
			{Title: "On Rivers", Summary: "Water moves."},
			{Title: "Tides", Summary: "The moon pulls.", CoverImage: "https://cdn.test/tides.png"},
		}},
	}, []string{"a@test", "b@test"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "Baraza newsletter", msg.Subject)
	assert.Equal(t, []string{"news@baraza.test"}, msg.To)
	assert.Equal(t, []string{"a@test", "b@test"}, msg.Bcc)
	assert.Contains(t, msg.HTML, "On Rivers")
	assert.Contains(t, msg.HTML, DefaultCoverImage)
	assert.Contains(t, msg.HTML, "https://cdn.test/tides.png")
	assert.Contains(t, msg.Text, "Science")
	assert.NotContains(t, msg.Text, "<h2>")
}

func TestMailer_SendNewsletter_NoSubscribers(t *testing.T) {
	sender := NewLogSender(logger.Discard())
	m := newTestMailer(t, sender)

	_, err := m.SendNewsletter(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	assert.Empty(t, sender.Sent())
}

func TestMailer_SendEditorWelcome(t *testing.T) {
	sender := NewLogSender(logger.Discard())
	m := newTestMailer(t, sender)

	_, err := m.SendEditorWelcome(context.Background(), "ed@test", "Ada Obi")
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ed@test"}, sent[0].To)
	assert.Contains(t, sent[0].HTML, "Ada Obi")
}

type failingSender struct{}

func (failingSender) Send(context.Context, *Message) (string, error) {
	return "", errors.New("connection refused")
}

func TestMailer_DeliveryFailure(t *testing.T) {
	m := newTestMailer(t, failingSender{})

	_, err := m.SendEditorWelcome(context.Background(), "ed@test", "Ada Obi")
	assert.True(t, errors.Is(err, domainerrors.ErrDelivery))
}

type fakeSES struct {
	input  *sesv2.SendEmailInput
	inputs []*sesv2.SendEmailInput
	err    error
	failAt int
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	f.inputs = append(f.inputs, in)
	if f.err != nil && len(f.inputs) > f.failAt {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String(fmt.Sprintf("ses-%d", 122+len(f.inputs)))}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	s := newSESSender(client, logger.Discard())

	id, err := s.Send(context.Background(), &Message{
		From:    "news@baraza.test",
		To:      []string{"news@baraza.test"},
		Bcc:     []string{"a@test"},
		Subject: "Baraza newsletter",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)

	require.NotNil(t, client.input)
	assert.Equal(t, []string{"a@test"}, client.input.Destination.BccAddresses)
	assert.Equal(t, "hi", aws.ToString(client.input.Content.Simple.Body.Text.Data))
}

func TestSESSender_RejectsInvalidMessage(t *testing.T) {
	client := &fakeSES{}
	s := newSESSender(client, logger.Discard())

	_, err := s.Send(context.Background(), &Message{From: "x@test", Subject: "s"})
	assert.Error(t, err)
	assert.Nil(t, client.input)
}

func TestSESSender_ClientError(t *testing.T) {
	s := newSESSender(&fakeSES{err: errors.New("throttled")}, logger.Discard())

	_, err := s.Send(context.Background(), &Message{From: "x@test", To: []string{"y@test"}, Subject: "s"})
	assert.ErrorContains(t, err, "throttled")
}

func TestSESSender_SplitsLargeBccList(t *testing.T) {
	client := &fakeSES{}
	s := newSESSender(client, logger.Discard())

	bcc := make([]string, 120)
	for i := range bcc {
		bcc[i] = fmt.Sprintf("reader%d@test", i)
	}

	id, err := s.Send(context.Background(), &Message{
		From:    "news@baraza.test",
		To:      []string{"news@baraza.test"},
		Bcc:     bcc,
		Subject: "Baraza newsletter",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)

	require.Len(t, client.inputs, 3)
	var delivered []string
	for _, in := range client.inputs {
		dest := in.Destination
		total := len(dest.ToAddresses) + len(dest.CcAddresses) + len(dest.BccAddresses)
		assert.LessOrEqual(t, total, maxSESRecipients)
		assert.Equal(t, []string{"news@baraza.test"}, dest.ToAddresses)
		delivered = append(delivered, dest.BccAddresses...)
	}
	assert.Equal(t, bcc, delivered)
}

func TestSESSender_StopsOnBatchFailure(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled"), failAt: 1}
	s := newSESSender(client, logger.Discard())

	bcc := make([]string, 60)
	for i := range bcc {
		bcc[i] = fmt.Sprintf("reader%d@test", i)
	}

	_, err := s.Send(context.Background(), &Message{From: "x@test", To: []string{"x@test"}, Bcc: bcc, Subject: "s"})
	assert.ErrorContains(t, err, "throttled")
	assert.Len(t, client.inputs, 2)
}

func TestBccBatches(t *testing.T) {
	assert.Equal(t, [][]string{nil}, bccBatches(nil, 49))
	assert.Nil(t, bccBatches([]string{"a@test"}, 0))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, bccBatches([]string{"a", "b", "c"}, 2))
}
