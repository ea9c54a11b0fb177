package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
)

// Dispatcher records outbound notifications and hands them to an optional
// Mailer. The record is written before delivery is attempted and is kept
// whatever the delivery outcome; with no Mailer the record's mailto link is
// the delivery path.
type Dispatcher struct {
	log      repo.NotificationRepo
	mailer   Mailer
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher constructs a Dispatcher. mailer, recorder and logger may be nil.
func NewDispatcher(log repo.NotificationRepo, mailer Mailer, recorder Recorder, logger *slog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{log: log, mailer: mailer, recorder: recorder, logger: logger, now: time.Now}
}

// Send records a notification and attempts delivery.
// It fails only when the record cannot be written.
func (d *Dispatcher) Send(ctx context.Context, tripID uuid.UUID, recipient, subject, body string) (domain.Notification, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return domain.Notification{}, fmt.Errorf("service.Dispatcher.Send: %w: recipient is required", domain.ErrValidation)
	}

	n := domain.Notification{
		ID:        uuid.New(),
		TripID:    tripID,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		At:        d.now(),
	}
	stored, err := d.log.Record(ctx, n)
	if err != nil {
		d.recorder.Notification(OutcomeLogFailed)
		return domain.Notification{}, fmt.Errorf("service.Dispatcher.Send: %w", storeErr(err))
	}

	if d.mailer == nil {
		d.recorder.Notification(OutcomeRecorded)
		return stored, nil
	}
	if err := d.mailer.Send(ctx, recipient, subject, body); err != nil {
		d.recorder.Notification(OutcomeDeliveryFailed)
		d.logger.WarnContext(ctx, "notification delivery failed",
			slog.String("notification_id", stored.ID.String()),
			slog.String("trip_id", tripID.String()),
			slog.String("error", err.Error()),
		)
		return stored, nil
	}
	d.recorder.Notification(OutcomeDelivered)
	return stored, nil
}

// TripDecision sends the approval or rejection message for trip to its
// requester. note is the approver's comment or the rejection reason.
func (d *Dispatcher) TripDecision(ctx context.Context, trip domain.Trip, action domain.Action, note string) (domain.Notification, error) {
	subject, body, err := decisionMessage(trip, action, note)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("service.Dispatcher.TripDecision: %w", err)
	}
	return d.Send(ctx, trip.ID, trip.RequesterEmail, subject, body)
}

// List returns recorded notifications newest first. An empty recipient
// lists everyone's.
func (d *Dispatcher) List(ctx context.Context, recipient string, page domain.PaginationParams) ([]domain.Notification, error) {
	out, err := d.log.List(ctx, domain.NotificationFilter{Recipient: strings.TrimSpace(recipient), Page: page})
	if err != nil {
		return nil, fmt.Errorf("service.Dispatcher.List: %w", storeErr(err))
	}
	if out == nil {
		return []domain.Notification{}, nil
	}
	return out, nil
}

// decisionMessage renders the subject and body for an approve or reject.
func decisionMessage(trip domain.Trip, action domain.Action, note string) (subject, body string, err error) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = "-"
	}
	dates := fmt.Sprintf("%s to %s", trip.Start.Format(domain.DateLayout), trip.End.Format(domain.DateLayout))

	switch action {
	case domain.ActionApprove:
		subject = fmt.Sprintf("Your trip request to %s is approved", trip.Destination)
		body = fmt.Sprintf("Hi %s,\n\nYour trip to %s (%s) has been approved.\n\nComments: %s\n\nRegards",
			trip.Requester, trip.Destination, dates, note)
	case domain.ActionReject:
		subject = fmt.Sprintf("Your trip request to %s was rejected", trip.Destination)
		body = fmt.Sprintf("Hi %s,\n\nYour trip to %s (%s) has been rejected.\n\nReason: %s\n\nRegards",
			trip.Requester, trip.Destination, dates, note)
	default:
		return "", "", fmt.Errorf("%w: no notification for %s", domain.ErrValidation, action)
	}
	return subject, body, nil
}
