// Package notify delivers notification messages over SMTP.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	mail "github.com/go-mail/mail/v2"
)

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Travel Desk <no-reply@example.com>"
	SkipTLSVerify bool   // development only
}

// SMTPMailer sends plain-text mail through one SMTP relay.
// It satisfies service.Mailer.
type SMTPMailer struct {
	from   string
	dialer *mail.Dialer
}

// NewSMTPMailer returns a mailer for cfg. Host and From are required.
// STARTTLS is mandatory.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("notify.NewSMTPMailer: smtp not configured (SMTP_HOST/SMTP_FROM)")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	d.Timeout = 10 * time.Second

	return &SMTPMailer{from: cfg.From, dialer: d}, nil
}

// Send dials the relay and delivers one message. The dial itself is not
// cancellable; ctx is checked before it starts.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify.SMTPMailer.Send: %w", err)
	}
	if err := m.dialer.DialAndSend(m.message(to, subject, body)); err != nil {
		return fmt.Errorf("notify.SMTPMailer.Send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(to, subject, body string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}
