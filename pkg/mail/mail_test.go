package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukundo0023/empowerhered-sub000/pkg/config"
)

type fakeSendGrid struct {
	sent   []*sgmail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func TestSendGridSenderBuildsMessage(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := NewSendGridSender("key", "EmpowerHerEd", "no-reply@empowerhered.org", client)

	err := sender.Send(context.Background(), Message{To: "ada@example.com", ToName: "Ada", Subject: "Booking accepted", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	m := client.sent[0]
	assert.Equal(t, "no-reply@empowerhered.org", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "Booking accepted", m.Personalizations[0].Subject)
	assert.Equal(t, "ada@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/html", m.Content[0].Type)
}

func TestSendGridSenderErrors(t *testing.T) {
	client := &fakeSendGrid{status: 401}
	sender := NewSendGridSender("key", "EmpowerHerEd", "no-reply@empowerhered.org", client)

	err := sender.Send(context.Background(), Message{To: "ada@example.com", Subject: "s", HTML: "x"})
	assert.ErrorContains(t, err, "status 401")

	client.err = errors.New("dial tcp: timeout")
	err = sender.Send(context.Background(), Message{To: "ada@example.com", Subject: "s", HTML: "x"})
	assert.ErrorContains(t, err, "timeout")

	err = sender.Send(context.Background(), Message{Subject: "s"})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestNewSenderSelectsProvider(t *testing.T) {
	s, err := NewSender(config.MailConfig{Provider: config.MailProviderLog}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	_, err = NewSender(config.MailConfig{Provider: config.MailProviderSendGrid}, nil)
	assert.Error(t, err)

	s, err = NewSender(config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	_, err = NewSender(config.MailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestLogSenderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewLogSender(nil).Send(ctx, Message{To: "a@b.c", Subject: "s"})
	assert.ErrorIs(t, err, context.Canceled)
}
