package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/handler"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	list              func(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error)
	get               func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	create            func(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	update            func(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error)
	delete            func(ctx context.Context, id uuid.UUID) error
	addComment        func(ctx context.Context, id uuid.UUID, author, text string) (domain.Comment, error)
	addAttachments    func(ctx context.Context, id uuid.UUID, metas []service.AttachmentMeta) ([]domain.Attachment, error)
	uploadAttachments func(ctx context.Context, id uuid.UUID, uploads []service.Upload) ([]domain.Attachment, error)
	transition        func(ctx context.Context, action domain.Action, id uuid.UUID, in service.TransitionInput) (domain.Trip, error)
}

func (m *mockTripServicer) List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	return m.list(ctx, f)
}
func (m *mockTripServicer) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, id)
}
func (m *mockTripServicer) Create(ctx context.Context, d domain.TripDraft) (domain.Trip, error) {
	return m.create(ctx, d)
}
func (m *mockTripServicer) Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error) {
	return m.update(ctx, id, u)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) AddComment(ctx context.Context, id uuid.UUID, author, text string) (domain.Comment, error) {
	return m.addComment(ctx, id, author, text)
}
func (m *mockTripServicer) AddAttachments(ctx context.Context, id uuid.UUID, metas []service.AttachmentMeta) ([]domain.Attachment, error) {
	return m.addAttachments(ctx, id, metas)
}
func (m *mockTripServicer) UploadAttachments(ctx context.Context, id uuid.UUID, uploads []service.Upload) ([]domain.Attachment, error) {
	return m.uploadAttachments(ctx, id, uploads)
}
func (m *mockTripServicer) Approve(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error) {
	return m.transition(ctx, domain.ActionApprove, id, in)
}
func (m *mockTripServicer) Reject(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error) {
	return m.transition(ctx, domain.ActionReject, id, in)
}
func (m *mockTripServicer) Start(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error) {
	return m.transition(ctx, domain.ActionStart, id, in)
}
func (m *mockTripServicer) Complete(ctx context.Context, id uuid.UUID, in service.TransitionInput) (domain.Trip, error) {
	return m.transition(ctx, domain.ActionComplete, id, in)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockNotificationServicer struct {
	list func(ctx context.Context, recipient string, page domain.PaginationParams) ([]domain.Notification, error)
}

func (m *mockNotificationServicer) List(ctx context.Context, recipient string, page domain.PaginationParams) ([]domain.Notification, error) {
	return m.list(ctx, recipient, page)
}

var _ handler.NotificationServicer = (*mockNotificationServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, filter domain.TripFilter) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, filter domain.TripFilter) ([]domain.ExportRow, error) {
	return m.export(ctx, filter)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// dirBlobs opens keys relative to a temp directory.
type dirBlobs struct{ dir string }

func (b dirBlobs) Open(_ context.Context, key string) (*os.File, error) {
	return os.Open(b.dir + "/" + key)
}

var _ handler.BlobOpener = dirBlobs{}

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into a chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.TripServicer) http.Handler {
	return handler.NewServer(svc, nil, nil, nil, nil).Handler()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends a request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}
