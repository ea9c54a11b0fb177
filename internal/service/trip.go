// Package service contains the business logic for the travel admin API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
)

// Display names used when the acting user does not give one.
const (
	DefaultReviewerName  = "Approver"
	DefaultOperatorName  = "System"
	DefaultCommentAuthor = "Anonymous"

	// WithdrawnReason is recorded when an approved trip is rejected without a reason.
	WithdrawnReason = "Withdrawn by approver"
)

// sniffLen is how many leading bytes are read to detect an upload's type.
const sniffLen = 3072

// Notifier sends the outcome of a review to the trip's requester.
// *Dispatcher satisfies it.
type Notifier interface {
	TripDecision(ctx context.Context, trip domain.Trip, action domain.Action, note string) (domain.Notification, error)
}

// TransitionInput carries the caller side of a lifecycle operation.
type TransitionInput struct {
	Actor   domain.Actor
	Comment string // approver comment or rejection reason
	Notify  bool   // approve/reject only
}

// TripService is the lifecycle engine and the facade over the trip store.
type TripService struct {
	trips    repo.TripRepo
	notifier Notifier
	blobs    BlobStore
	recorder Recorder
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewTripService constructs a TripService backed by the provided store.
// notifier, blobs, recorder and logger may be nil: without a notifier no
// messages are sent, and without blobs uploads are rejected.
func NewTripService(trips repo.TripRepo, notifier Notifier, blobs BlobStore, recorder Recorder, logger *slog.Logger) *TripService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{
		trips:    trips,
		notifier: notifier,
		blobs:    blobs,
		recorder: recorder,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// List returns trips matching filter, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", storeErr(err))
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Get returns a single trip by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", storeErr(err))
	}
	return t, nil
}

// Create validates the draft and persists a pending trip whose timeline
// holds one "requested" entry attributed to the requester.
func (s *TripService) Create(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	draft.Requester = strings.TrimSpace(draft.Requester)
	draft.RequesterEmail = strings.TrimSpace(draft.RequesterEmail)
	draft.Department = strings.TrimSpace(draft.Department)
	draft.Destination = strings.TrimSpace(draft.Destination)
	draft.Purpose = strings.TrimSpace(draft.Purpose)

	if err := validateStruct(s.validate, draft); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	switch {
	case draft.Start.IsZero():
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: start is required", domain.ErrValidation)
	case draft.End.IsZero():
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: end is required", domain.ErrValidation)
	}
	if draft.RiskLevel == "" {
		draft.RiskLevel = domain.RiskLow
	}

	now := s.now()
	trip := domain.Trip{
		Requester:      draft.Requester,
		RequesterEmail: draft.RequesterEmail,
		Department:     draft.Department,
		Destination:    draft.Destination,
		Start:          draft.Start,
		End:            draft.End,
		Purpose:        draft.Purpose,
		CostEstimate:   draft.CostEstimate,
		RiskLevel:      draft.RiskLevel,
		Status:         domain.StatusPending,
		Timeline: []domain.TimelineEntry{
			{At: now, Status: domain.StatusRequested, User: draft.Requester},
		},
		CreatedAt: now,
	}

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", storeErr(err))
	}
	return created, nil
}

// Update merges the set fields of u into the trip.
// Returns domain.ErrValidation for an empty or invalid update and
// domain.ErrNotFound if the trip does not exist.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error) {
	if u.Empty() {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: no fields to update", domain.ErrValidation)
	}
	for _, p := range []*string{u.Requester, u.RequesterEmail, u.Department, u.Destination, u.Purpose} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if err := validateStruct(s.validate, u); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	t, err := s.trips.Update(ctx, id, u)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", storeErr(err))
	}
	return t, nil
}

// Delete removes the trip and its children, then removes the stored bytes of
// its attachments. Blob removal is best effort; a failure is logged.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", storeErr(err))
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", storeErr(err))
	}
	s.removeBlobs(ctx, t.Attachments)
	return nil
}

// AddComment appends a freestanding comment. It never changes status.
func (s *TripService) AddComment(ctx context.Context, id uuid.UUID, author, text string) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, fmt.Errorf("service.TripService.AddComment: %w: text is required", domain.ErrValidation)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultCommentAuthor
	}

	c, err := s.trips.AddComment(ctx, id, domain.NewComment(author, text, s.now()))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("service.TripService.AddComment: %w", storeErr(err))
	}
	return c, nil
}

// AddAttachments appends metadata for files whose bytes are stored elsewhere.
func (s *TripService) AddAttachments(ctx context.Context, id uuid.UUID, metas []AttachmentMeta) ([]domain.Attachment, error) {
	if len(metas) == 0 {
		return nil, fmt.Errorf("service.TripService.AddAttachments: %w: at least one file is required", domain.ErrValidation)
	}

	now := s.now()
	atts := make([]domain.Attachment, 0, len(metas))
	for _, m := range metas {
		m.Filename = strings.TrimSpace(m.Filename)
		if err := validateStruct(s.validate, m); err != nil {
			return nil, fmt.Errorf("service.TripService.AddAttachments: %w", err)
		}
		atts = append(atts, domain.Attachment{
			ID:        uuid.New(),
			Filename:  m.Filename,
			SizeBytes: m.SizeBytes,
			MimeType:  m.MimeType,
			At:        now,
		})
	}

	stored, err := s.trips.AddAttachments(ctx, id, atts)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.AddAttachments: %w", storeErr(err))
	}
	return stored, nil
}

// UploadAttachments stores each upload's bytes and appends its metadata.
// If any step fails, bytes already written for this call are removed.
func (s *TripService) UploadAttachments(ctx context.Context, id uuid.UUID, uploads []Upload) ([]domain.Attachment, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("service.TripService.UploadAttachments: %w: attachment storage is not configured", domain.ErrValidation)
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("service.TripService.UploadAttachments: %w: at least one file is required", domain.ErrValidation)
	}
	if _, err := s.trips.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("service.TripService.UploadAttachments: %w", storeErr(err))
	}

	now := s.now()
	atts := make([]domain.Attachment, 0, len(uploads))
	for _, u := range uploads {
		a, err := s.saveUpload(ctx, id, u, now)
		if err != nil {
			s.removeBlobs(ctx, atts)
			return nil, fmt.Errorf("service.TripService.UploadAttachments: %w", err)
		}
		atts = append(atts, a)
	}

	stored, err := s.trips.AddAttachments(ctx, id, atts)
	if err != nil {
		s.removeBlobs(ctx, atts)
		return nil, fmt.Errorf("service.TripService.UploadAttachments: %w", storeErr(err))
	}
	return stored, nil
}

func (s *TripService) saveUpload(ctx context.Context, tripID uuid.UUID, u Upload, at time.Time) (domain.Attachment, error) {
	name := strings.TrimSpace(u.Filename)
	if name == "" {
		return domain.Attachment{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.Attachment{}, fmt.Errorf("read %s: %w", name, err)
	}
	head = head[:n]

	mimeType := u.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(head).String()
	}

	attID := uuid.New()
	key, size, err := s.blobs.Save(ctx, tripID, attID, name, io.MultiReader(bytes.NewReader(head), u.Body))
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("%w: save %s: %w", domain.ErrStore, name, err)
	}

	return domain.Attachment{
		ID:         attID,
		Filename:   name,
		SizeBytes:  size,
		MimeType:   mimeType,
		StorageKey: key,
		At:         at,
	}, nil
}

func (s *TripService) removeBlobs(ctx context.Context, atts []domain.Attachment) {
	if s.blobs == nil {
		return
	}
	for _, a := range atts {
		if a.StorageKey == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, a.StorageKey); err != nil {
			s.logger.WarnContext(ctx, "attachment blob not removed",
				slog.String("key", a.StorageKey),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Approve moves a pending trip to approved. Requires a reviewer role.
func (s *TripService) Approve(ctx context.Context, id uuid.UUID, in TransitionInput) (domain.Trip, error) {
	t, err := s.transition(ctx, id, domain.ActionApprove, in)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Approve: %w", err)
	}
	return t, nil
}

// Reject moves a pending or approved trip to rejected. Requires a reviewer role.
func (s *TripService) Reject(ctx context.Context, id uuid.UUID, in TransitionInput) (domain.Trip, error) {
	t, err := s.transition(ctx, id, domain.ActionReject, in)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Reject: %w", err)
	}
	return t, nil
}

// Start moves an approved trip to active.
func (s *TripService) Start(ctx context.Context, id uuid.UUID, in TransitionInput) (domain.Trip, error) {
	t, err := s.transition(ctx, id, domain.ActionStart, in)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}
	return t, nil
}

// Complete moves an active trip to completed.
func (s *TripService) Complete(ctx context.Context, id uuid.UUID, in TransitionInput) (domain.Trip, error) {
	t, err := s.transition(ctx, id, domain.ActionComplete, in)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}
	return t, nil
}

// transition is the single path for every status change:
// authorize, load, check the edge, apply atomically, then notify.
// Authorization and edge failures return before anything is written.
func (s *TripService) transition(ctx context.Context, id uuid.UUID, action domain.Action, in TransitionInput) (domain.Trip, error) {
	if !in.Actor.Permits(action) {
		s.recorder.Transition(action, OutcomeForbidden)
		return domain.Trip{}, fmt.Errorf("%w: role %q may not %s trips", domain.ErrForbidden, in.Actor.Role, action)
	}

	current, err := s.trips.GetByID(ctx, id)
	if err != nil {
		s.recorder.Transition(action, outcomeOf(err))
		return domain.Trip{}, storeErr(err)
	}

	to, ok := domain.NextStatus(current.Status, action)
	if !ok {
		s.recorder.Transition(action, OutcomeInvalid)
		return domain.Trip{}, fmt.Errorf("%w: cannot %s a %s trip", domain.ErrInvalidTransition, action, current.Status)
	}

	name := strings.TrimSpace(in.Actor.Name)
	if name == "" {
		name = DefaultOperatorName
		if action.RequiresReviewer() {
			name = DefaultReviewerName
		}
	}

	at := s.now()
	tr := domain.Transition{Action: action, From: current.Status, To: to, User: name, At: at}

	// The requester's mail carries only what the reviewer wrote; the
	// withdrawal default is for the comment thread.
	given := strings.TrimSpace(in.Comment)
	note := given
	if note == "" && action == domain.ActionReject && current.Status == domain.StatusApproved {
		note = WithdrawnReason
	}
	if note != "" {
		c := domain.NewComment(name, note, at)
		tr.Comment = &c
	}

	updated, err := s.trips.ApplyTransition(ctx, id, tr)
	if err != nil {
		s.recorder.Transition(action, outcomeOf(err))
		return domain.Trip{}, storeErr(err)
	}
	s.recorder.Transition(action, OutcomeOK)

	if action.RequiresReviewer() && in.Notify && updated.RequesterEmail != "" && s.notifier != nil {
		if _, err := s.notifier.TripDecision(ctx, updated, action, given); err != nil {
			s.logger.WarnContext(ctx, "trip decision notification failed",
				slog.String("trip_id", id.String()),
				slog.String("action", string(action)),
				slog.String("error", err.Error()),
			)
		}
	}
	return updated, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
