// Package handler implements the HTTP handlers for the travel admin API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, trip.go, lifecycle.go, etc.) but all
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching a store or the service layer.
type TripServicer interface {
	List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Create(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, id uuid.UUID, author, text string) (domain.Comment, error)
	AddAttachments(ctx context.Context, id uuid.UUID, metas []service.AttachmentMeta) ([]domain.Attachment, error)
	UploadAttachments(ctx context.Context, id uuid.UUID, uploads []service.Upload) ([]domain.Attachment, error)
	Approve(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error)
	Reject(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error)
	Start(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error)
	Complete(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error)
}

// NotificationServicer lists recorded notifications.
type NotificationServicer interface {
	List(ctx context.Context, recipient string, page domain.PaginationParams) ([]domain.Notification, error)
}

// ExportServicer produces the flat report rows behind GET /export.
type ExportServicer interface {
	Export(ctx context.Context, filter domain.TripFilter) ([]domain.ExportRow, error)
}

// BlobOpener opens stored attachment bytes for download.
type BlobOpener interface {
	Open(ctx context.Context, key string) (*os.File, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips         TripServicer
	notifications NotificationServicer
	export        ExportServicer
	blobs         BlobOpener
	logger        *slog.Logger
}

// NewServer constructs the Server with all its dependencies. Any servicer
// may be nil in tests that do not exercise its routes. A nil logger falls
// back to slog.Default().
func NewServer(trips TripServicer, notifications NotificationServicer, export ExportServicer, blobs BlobOpener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		trips:         trips,
		notifications: notifications,
		export:        export,
		blobs:         blobs,
		logger:        logger,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes registers every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.listTrips)
		r.Post("/", s.createTrip)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTrip)
			r.Put("/", s.updateTrip)
			r.Delete("/", s.deleteTrip)

			r.Post("/approve", s.transition(domain.ActionApprove))
			r.Post("/reject", s.transition(domain.ActionReject))
			r.Post("/start", s.transition(domain.ActionStart))
			r.Post("/complete", s.transition(domain.ActionComplete))

			r.Post("/comments", s.addComment)
			r.Post("/attachments", s.addAttachments)
			r.Get("/attachments/{attachmentID}", s.downloadAttachment)
		})
	})

	r.Get("/notifications", s.listNotifications)
	r.Get("/export", s.getExport)
}

// Handler returns a chi router with every API route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
