package service

import "context"

//go:generate mockgen -source=mailer.go -destination=mailer_mock_test.go -package=service

// Mailer delivers a plain-text message. internal/notify provides the SMTP
// implementation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
