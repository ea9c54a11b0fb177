package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

// NotificationRepo persists the bounded recent-notifications log.
type NotificationRepo interface {
	// Record stores n and prunes everything older than the newest
	// domain.MaxNotifications records.
	Record(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// List returns records newest first, optionally for one recipient.
	List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error)
}

type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

// Record inserts and prunes in one transaction so the log never exceeds its cap.
func (r *pgNotificationRepo) Record(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	const insert = `
		INSERT INTO notifications (id, trip_id, recipient_email, subject, body, created_at)
		VALUES (@id, @trip_id, @recipient, @subject, @body, @created_at)
		RETURNING id, trip_id, recipient_email, subject, body, created_at`

	const prune = `
		DELETE FROM notifications
		WHERE seq NOT IN (
			SELECT seq FROM notifications ORDER BY seq DESC LIMIT @keep
		)`

	args := pgx.NamedArgs{
		"id":         n.ID,
		"trip_id":    n.TripID,
		"recipient":  n.Recipient,
		"subject":    n.Subject,
		"body":       n.Body,
		"created_at": n.At,
	}

	var stored domain.Notification
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		stored, err = scanNotification(tx.QueryRow(ctx, insert, args))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, prune, pgx.NamedArgs{"keep": domain.MaxNotifications})
		return err
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Record: %w", err)
	}
	return stored, nil
}

// List returns notifications ordered by insertion, newest first.
// Recipient matching is case-insensitive.
func (r *pgNotificationRepo) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	const q = `
		SELECT id, trip_id, recipient_email, subject, body, created_at
		FROM notifications
		WHERE (@recipient::text = '' OR lower(recipient_email) = lower(@recipient::text))
		ORDER BY seq DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"recipient": filter.Recipient,
		"limit":     filter.Page.Limit,
		"offset":    filter.Page.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.List: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.NotificationRepo.List: scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.List: rows: %w", err)
	}
	return out, nil
}

func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n      domain.Notification
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	if err := s.Scan(&id, &tripID, &n.Recipient, &n.Subject, &n.Body, &n.At); err != nil {
		return domain.Notification{}, err
	}
	n.ID = uuid.UUID(id.Bytes)
	n.TripID = uuid.UUID(tripID.Bytes)
	return n, nil
}
