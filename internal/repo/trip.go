// Package repo contains all database access logic for the travel admin API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so multi-statement writes nest cleanly inside a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo defines the persistence operations for trips and their child
// collections. The service layer depends on this interface, not on the
// Postgres implementation, so the lifecycle engine runs unchanged over the
// offline cache in package localstore and over mocks in unit tests.
type TripRepo interface {
	// List returns trips matching filter, most recently created first, each
	// with its timeline, comments and attachments populated.
	List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error)

	// GetByID retrieves a single trip with its child collections.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Create persists a new trip together with its seed timeline in one
	// transaction and returns the stored record with a generated ID.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Update merges the set fields of u into the trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error)

	// Delete removes a trip and all of its children.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddComment appends a comment. Returns domain.ErrNotFound if the trip is absent.
	AddComment(ctx context.Context, tripID uuid.UUID, c domain.Comment) (domain.Comment, error)

	// AddAttachments appends attachment metadata in upload order.
	// Returns domain.ErrNotFound if the trip is absent.
	AddAttachments(ctx context.Context, tripID uuid.UUID, atts []domain.Attachment) ([]domain.Attachment, error)

	// ApplyTransition atomically moves the trip from tr.From to tr.To, appends
	// one timeline entry, and appends tr.Comment when it is non-nil.
	// Returns domain.ErrNotFound if the trip is absent and
	// domain.ErrInvalidTransition if its status is no longer tr.From.
	ApplyTransition(ctx context.Context, tripID uuid.UUID, tr domain.Transition) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, requester, requester_email, department, destination, start_date, end_date,
		purpose, cost_estimate, risk_level, status, created_at, updated_at`

// List returns trips ordered by created_at descending.
// An empty substring filter becomes the pattern "%%", which matches every row.
func (r *pgTripRepo) List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE (@status::text = '' OR status = @status::text)
		  AND department  ILIKE @department  ESCAPE '\'
		  AND destination ILIKE @destination ESCAPE '\'
		  AND requester   ILIKE @requester   ESCAPE '\'
		ORDER BY created_at DESC, id`

	args := pgx.NamedArgs{
		"status":      string(filter.StatusFilter()),
		"department":  containsPattern(filter.Department),
		"destination": containsPattern(filter.Destination),
		"requester":   containsPattern(filter.Requester),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	if err := loadChildren(ctx, r.db, trips); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	t, err := getTrip(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return t, nil
}

// Create inserts the trip row and its seed timeline in one transaction.
// trip.Timeline is newest first, so it is inserted in reverse to keep seq
// order equal to causal order.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (requester, requester_email, department, destination, start_date, end_date,
		                   purpose, cost_estimate, risk_level, status, created_at, updated_at)
		VALUES (@requester, @requester_email, @department, @destination, @start_date, @end_date,
		        @purpose, @cost_estimate, @risk_level, @status,
		        COALESCE(@created_at, now()), COALESCE(@created_at, now()))
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"requester":       trip.Requester,
		"requester_email": trip.RequesterEmail,
		"department":      trip.Department,
		"destination":     trip.Destination,
		"start_date":      trip.Start,
		"end_date":        trip.End,
		"purpose":         trip.Purpose,
		"cost_estimate":   trip.CostEstimate,
		"risk_level":      string(trip.RiskLevel),
		"status":          string(trip.Status),
		"created_at":      nullTime(trip.CreatedAt),
	}

	var created domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		created, err = scanTrip(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		for i := len(trip.Timeline) - 1; i >= 0; i-- {
			if err := insertTimeline(ctx, tx, created.ID, trip.Timeline[i]); err != nil {
				return err
			}
		}
		created, err = getTrip(ctx, tx, created.ID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return created, nil
}

// Update merges the non-nil fields of u. NULL parameters fall through COALESCE
// to the stored value.
func (r *pgTripRepo) Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET requester       = COALESCE(@requester, requester),
		    requester_email = COALESCE(@requester_email, requester_email),
		    department      = COALESCE(@department, department),
		    destination     = COALESCE(@destination, destination),
		    start_date      = COALESCE(@start_date, start_date),
		    end_date        = COALESCE(@end_date, end_date),
		    purpose         = COALESCE(@purpose, purpose),
		    cost_estimate   = COALESCE(@cost_estimate, cost_estimate),
		    risk_level      = COALESCE(@risk_level, risk_level),
		    updated_at      = now()
		WHERE id = @id
		RETURNING id`

	var risk *string
	if u.RiskLevel != nil {
		s := string(*u.RiskLevel)
		risk = &s
	}

	args := pgx.NamedArgs{
		"id":              id,
		"requester":       u.Requester,
		"requester_email": u.RequesterEmail,
		"department":      u.Department,
		"destination":     u.Destination,
		"start_date":      u.Start,
		"end_date":        u.End,
		"purpose":         u.Purpose,
		"cost_estimate":   u.CostEstimate,
		"risk_level":      risk,
	}

	var updatedID pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}

	t, err := getTrip(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return t, nil
}

// Delete removes a trip by primary key. Children go with ON DELETE CASCADE.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AddComment inserts the comment only if the trip exists; an empty result
// set means it does not.
func (r *pgTripRepo) AddComment(ctx context.Context, tripID uuid.UUID, c domain.Comment) (domain.Comment, error) {
	const q = `
		INSERT INTO trip_comments (id, trip_id, user_name, comment, created_at)
		SELECT @id, t.id, @user_name, @comment, @created_at
		FROM trips t
		WHERE t.id = @trip_id
		RETURNING id, user_name, comment, created_at`

	args := pgx.NamedArgs{
		"id":         c.ID,
		"trip_id":    tripID,
		"user_name":  c.Author,
		"comment":    c.Text,
		"created_at": c.At,
	}

	got, err := scanComment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("repo.TripRepo.AddComment: %w", err)
	}
	return got, nil
}

// AddAttachments inserts all metadata rows in one transaction.
func (r *pgTripRepo) AddAttachments(ctx context.Context, tripID uuid.UUID, atts []domain.Attachment) ([]domain.Attachment, error) {
	const q = `
		INSERT INTO trip_attachments (id, trip_id, filename, size_bytes, mime_type, storage_key, created_at)
		VALUES (@id, @trip_id, @filename, @size_bytes, @mime_type, @storage_key, @created_at)
		RETURNING id, filename, size_bytes, mime_type, storage_key, created_at`

	out := make([]domain.Attachment, 0, len(atts))
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := requireTrip(ctx, tx, tripID); err != nil {
			return err
		}
		for _, a := range atts {
			args := pgx.NamedArgs{
				"id":          a.ID,
				"trip_id":     tripID,
				"filename":    a.Filename,
				"size_bytes":  a.SizeBytes,
				"mime_type":   a.MimeType,
				"storage_key": a.StorageKey,
				"created_at":  a.At,
			}
			got, err := scanAttachment(tx.QueryRow(ctx, q, args))
			if err != nil {
				return err
			}
			out = append(out, got)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.AddAttachments: %w", err)
	}
	return out, nil
}

// ApplyTransition runs the status compare-and-swap, the timeline insert and
// the optional comment insert in one transaction.
func (r *pgTripRepo) ApplyTransition(ctx context.Context, tripID uuid.UUID, tr domain.Transition) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status = @to, updated_at = now()
		WHERE id = @id AND status = @from`

	args := pgx.NamedArgs{
		"id":   tripID,
		"from": string(tr.From),
		"to":   string(tr.To),
	}

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if err := requireTrip(ctx, tx, tripID); err != nil {
				return err
			}
			return domain.ErrInvalidTransition
		}

		if err := insertTimeline(ctx, tx, tripID, tr.TimelineEntry()); err != nil {
			return err
		}
		if tr.Comment != nil {
			if err := insertComment(ctx, tx, tripID, *tr.Comment); err != nil {
				return err
			}
		}

		result, err = getTrip(ctx, tx, tripID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.ApplyTransition: %w", err)
	}
	return result, nil
}

// getTrip loads one trip row and its children through q.
func getTrip(ctx context.Context, q db, id uuid.UUID) (domain.Trip, error) {
	const sql = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	t, err := scanTrip(q.QueryRow(ctx, sql, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, err
	}
	trips := []domain.Trip{t}
	if err := loadChildren(ctx, q, trips); err != nil {
		return domain.Trip{}, err
	}
	return trips[0], nil
}

// requireTrip returns domain.ErrNotFound unless a trip with id exists.
func requireTrip(ctx context.Context, q db, id uuid.UUID) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func insertTimeline(ctx context.Context, q db, tripID uuid.UUID, e domain.TimelineEntry) error {
	const sql = `
		INSERT INTO trip_timeline (trip_id, status, user_name, created_at)
		VALUES (@trip_id, @status, @user_name, @created_at)`

	_, err := q.Exec(ctx, sql, pgx.NamedArgs{
		"trip_id":    tripID,
		"status":     string(e.Status),
		"user_name":  e.User,
		"created_at": e.At,
	})
	return err
}

func insertComment(ctx context.Context, q db, tripID uuid.UUID, c domain.Comment) error {
	const sql = `
		INSERT INTO trip_comments (id, trip_id, user_name, comment, created_at)
		VALUES (@id, @trip_id, @user_name, @comment, @created_at)`

	_, err := q.Exec(ctx, sql, pgx.NamedArgs{
		"id":         c.ID,
		"trip_id":    tripID,
		"user_name":  c.Author,
		"comment":    c.Text,
		"created_at": c.At,
	})
	return err
}

// loadChildren populates Timeline, Comments and Attachments for every trip
// in trips with one query per collection.
func loadChildren(ctx context.Context, q db, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	ids := make([]string, len(trips))
	index := make(map[uuid.UUID]int, len(trips))
	for i, t := range trips {
		ids[i] = t.ID.String()
		index[t.ID] = i
	}
	args := pgx.NamedArgs{"ids": ids}

	rows, err := q.Query(ctx, `
		SELECT trip_id, status, user_name, created_at
		FROM trip_timeline
		WHERE trip_id = ANY(@ids::uuid[])
		ORDER BY seq DESC`, args)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}
	err = eachRow(rows, func(row *childRow) error {
		var (
			e      domain.TimelineEntry
			status string
		)
		if err := row.Scan(&status, &e.User, &e.At); err != nil {
			return err
		}
		e.Status = domain.Status(status)
		i := index[row.tripID]
		trips[i].Timeline = append(trips[i].Timeline, e)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT trip_id, id, user_name, comment, created_at
		FROM trip_comments
		WHERE trip_id = ANY(@ids::uuid[])
		ORDER BY seq DESC`, args)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	err = eachRow(rows, func(row *childRow) error {
		c, err := scanComment(row)
		if err != nil {
			return err
		}
		i := index[row.tripID]
		trips[i].Comments = append(trips[i].Comments, c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT trip_id, id, filename, size_bytes, mime_type, storage_key, created_at
		FROM trip_attachments
		WHERE trip_id = ANY(@ids::uuid[])
		ORDER BY seq`, args)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	err = eachRow(rows, func(row *childRow) error {
		a, err := scanAttachment(row)
		if err != nil {
			return err
		}
		i := index[row.tripID]
		trips[i].Attachments = append(trips[i].Attachments, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	return nil
}

// eachRow calls fn once per row of a child-collection query.
func eachRow(rows pgx.Rows, fn func(row *childRow) error) error {
	defer rows.Close()
	row := &childRow{rows: rows}
	for rows.Next() {
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// childRow is a scanner over rows whose first column is trip_id. Scan
// consumes that column into tripID and the rest into dest.
type childRow struct {
	rows   pgx.Rows
	tripID uuid.UUID
}

func (c *childRow) Scan(dest ...any) error {
	var id pgtype.UUID
	if err := c.rows.Scan(append([]any{&id}, dest...)...); err != nil {
		return err
	}
	c.tripID = uuid.UUID(id.Bytes)
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single trips row into a domain.Trip without children.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		risk      string
		status    string
	)

	err := s.Scan(&id, &t.Requester, &t.RequesterEmail, &t.Department, &t.Destination,
		&startDate, &endDate, &t.Purpose, &t.CostEstimate, &risk, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Start = startDate.Time
	t.End = endDate.Time
	t.RiskLevel = domain.RiskLevel(risk)
	t.Status = domain.Status(status)
	return t, nil
}

func scanComment(s scanner) (domain.Comment, error) {
	var (
		c  domain.Comment
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Author, &c.Text, &c.At); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}

func scanAttachment(s scanner) (domain.Attachment, error) {
	var (
		a  domain.Attachment
		id pgtype.UUID
	)
	if err := s.Scan(&id, &a.Filename, &a.SizeBytes, &a.MimeType, &a.StorageKey, &a.At); err != nil {
		return domain.Attachment{}, err
	}
	a.ID = uuid.UUID(id.Bytes)
	return a, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// containsPattern turns a substring filter into an ILIKE pattern, escaping
// the LIKE metacharacters so user input matches literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
