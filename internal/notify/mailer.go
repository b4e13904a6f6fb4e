package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer delivers one rendered report. Implementations own transport
// details (TLS, timeouts); the dispatcher makes a single attempt per call.
type Mailer interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// SMTPMailer submits mail over SMTP with mandatory STARTTLS, the usual
// :587 submission setup.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

func NewSMTPMailer(host string, port int, sender, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: sender,
		password: password,
		sender:   sender,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string, recipients []string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.sender); err != nil {
		return fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("recipient addresses: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
