package service_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	list            func(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	update          func(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	addComment      func(ctx context.Context, tripID uuid.UUID, c domain.Comment) (domain.Comment, error)
	addAttachments  func(ctx context.Context, tripID uuid.UUID, atts []domain.Attachment) ([]domain.Attachment, error)
	applyTransition func(ctx context.Context, tripID uuid.UUID, tr domain.Transition) (domain.Trip, error)
}

func (m *mockTripRepo) List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error) {
	return m.list(ctx, filter)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error) {
	return m.update(ctx, id, u)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) AddComment(ctx context.Context, tripID uuid.UUID, c domain.Comment) (domain.Comment, error) {
	return m.addComment(ctx, tripID, c)
}
func (m *mockTripRepo) AddAttachments(ctx context.Context, tripID uuid.UUID, atts []domain.Attachment) ([]domain.Attachment, error) {
	return m.addAttachments(ctx, tripID, atts)
}
func (m *mockTripRepo) ApplyTransition(ctx context.Context, tripID uuid.UUID, tr domain.Transition) (domain.Trip, error) {
	return m.applyTransition(ctx, tripID, tr)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockNotificationRepo struct {
	record func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	list   func(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error)
}

func (m *mockNotificationRepo) Record(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return m.record(ctx, n)
}
func (m *mockNotificationRepo) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	return m.list(ctx, filter)
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

type mockNotifier struct {
	tripDecision func(ctx context.Context, trip domain.Trip, action domain.Action, note string) (domain.Notification, error)
}

func (m *mockNotifier) TripDecision(ctx context.Context, trip domain.Trip, action domain.Action, note string) (domain.Notification, error) {
	return m.tripDecision(ctx, trip, action, note)
}

var _ service.Notifier = (*mockNotifier)(nil)

// memBlobs is an in-memory service.BlobStore.
type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (b *memBlobs) Save(_ context.Context, tripID, attID uuid.UUID, filename string, r io.Reader) (string, int64, error) {
	if b.saveErr != nil {
		return "", 0, b.saveErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", 0, err
	}
	key := tripID.String() + "/" + attID.String() + "-" + filename
	b.mu.Lock()
	b.data[key] = buf.Bytes()
	b.mu.Unlock()
	return key, n, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.data, key)
	b.mu.Unlock()
	return nil
}

func (b *memBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

var _ service.BlobStore = (*memBlobs)(nil)

// countingRecorder records every outcome it is told about.
type countingRecorder struct {
	mu            sync.Mutex
	transitions   []string
	notifications []string
}

func (r *countingRecorder) Transition(action domain.Action, outcome string) {
	r.mu.Lock()
	r.transitions = append(r.transitions, string(action)+":"+outcome)
	r.mu.Unlock()
}

func (r *countingRecorder) Notification(outcome string) {
	r.mu.Lock()
	r.notifications = append(r.notifications, outcome)
	r.mu.Unlock()
}
