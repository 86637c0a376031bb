package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/go-api-registration/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(sent *[]sentMail, err error) *Mailer {
	m := NewMailer(&config.Config{
		SMTPHost:        "mail.local",
		SMTPPort:        "2525",
		SMTPFrom:        "noreply@test.com",
		ConfirmationURL: "https://app.test/confirm",
	})
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return err
	}
	return m
}

func TestMailer_NotifyConfirmation(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, nil)

	require.NoError(t, m.NotifyConfirmation(context.Background(), "jane@test.com", "ab12"))

	require.Len(t, sent, 1)
	assert.Equal(t, "mail.local:2525", sent[0].addr)
	assert.Nil(t, sent[0].auth)
	assert.Equal(t, []string{"jane@test.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Confirm your email address")
	assert.Contains(t, sent[0].msg, "https://app.test/confirm/ab12")
}

func TestMailer_UsesAuthWhenConfigured(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, nil)
	m.username, m.password = "user", "secret"

	require.NoError(t, m.SendEmail(context.Background(), "jane@test.com", "s", "b"))
	require.Len(t, sent, 1)
	assert.NotNil(t, sent[0].auth)
}

func TestMailer_SendError(t *testing.T) {
	var sent []sentMail
	boom := errors.New("connection refused")
	m := newTestMailer(&sent, boom)

	err := m.NotifyConfirmation(context.Background(), "jane@test.com", "ab12")
	assert.ErrorIs(t, err, boom)
}

func TestMailer_CancelledContext(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.NotifyConfirmation(ctx, "jane@test.com", "ab12"), context.Canceled)
	assert.Empty(t, sent)
}
