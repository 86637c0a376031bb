package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-api-registration/internal/config"
	"github.com/go-api-registration/internal/infrastructure/notify"
)

const confirmationSubject = "Confirm your email address"

// sendFunc has the signature of smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers confirmation links over plain SMTP.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	baseURL  string
	send     sendFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		baseURL:  cfg.ConfirmationURL,
		send:     smtp.SendMail,
	}
}

func (m *Mailer) NotifyConfirmation(ctx context.Context, to, token string) error {
	body := fmt.Sprintf("Welcome!\r\n\r\nConfirm your email address by opening the link below:\r\n\r\n%s\r\n",
		notify.ConfirmationLink(m.baseURL, token))
	return m.SendEmail(ctx, to, confirmationSubject, body)
}

// SendEmail sends a plain text message. net/smtp has no context support, so
// ctx is only checked before dialing.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
