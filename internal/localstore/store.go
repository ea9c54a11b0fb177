package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
)

var (
	_ repo.TripRepo         = (*TripStore)(nil)
	_ repo.NotificationRepo = (*NotificationLog)(nil)
)

// TripStore keeps every trip in one JSON array under TripsKey, newest first.
// Each write is a read-modify-write of the whole array, serialized by a
// process mutex. Writers in different processes sharing a KV race with last
// write wins.
type TripStore struct {
	kv  KV
	mu  sync.Mutex
	now func() time.Time
}

// NewTripStore returns a TripStore over kv.
func NewTripStore(kv KV) *TripStore {
	return &TripStore{kv: kv, now: time.Now}
}

func (s *TripStore) List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error) {
	docs, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("localstore.TripStore.List: %w", err)
	}

	status := filter.StatusFilter()
	var out []domain.Trip
	for _, d := range docs {
		if status != "" && d.Status != string(status) {
			continue
		}
		if !containsFold(d.Department, filter.Department) ||
			!containsFold(d.Destination, filter.Destination) ||
			!containsFold(d.Requester, filter.Requester) {
			continue
		}
		out = append(out, d.trip())
	}
	return out, nil
}

func (s *TripStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	docs, err := s.load(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("localstore.TripStore.GetByID: %w", err)
	}
	i := indexOf(docs, id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("localstore.TripStore.GetByID: %w", domain.ErrNotFound)
	}
	return docs[i].trip(), nil
}

// Create assigns a fresh id and prepends the trip.
func (s *TripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ID = uuid.New()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = s.now()
	}
	trip.UpdatedAt = trip.CreatedAt

	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		return append([]tripDoc{newTripDoc(trip)}, docs...), nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("localstore.TripStore.Create: %w", err)
	}
	return trip, nil
}

func (s *TripStore) Update(ctx context.Context, id uuid.UUID, u domain.TripUpdate) (domain.Trip, error) {
	var updated domain.Trip
	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		updated = u.Apply(docs[i].trip())
		updated.UpdatedAt = s.now()
		docs[i] = newTripDoc(updated)
		return docs, nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("localstore.TripStore.Update: %w", err)
	}
	return updated, nil
}

// Delete drops the trip document, which carries all of its children.
func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		return slices.Delete(docs, i, i+1), nil
	})
	if err != nil {
		return fmt.Errorf("localstore.TripStore.Delete: %w", err)
	}
	return nil
}

func (s *TripStore) AddComment(ctx context.Context, tripID uuid.UUID, c domain.Comment) (domain.Comment, error) {
	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		i := indexOf(docs, tripID)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		docs[i].Comments = append([]commentDoc{newCommentDoc(c)}, docs[i].Comments...)
		return docs, nil
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("localstore.TripStore.AddComment: %w", err)
	}
	return c, nil
}

func (s *TripStore) AddAttachments(ctx context.Context, tripID uuid.UUID, atts []domain.Attachment) ([]domain.Attachment, error) {
	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		i := indexOf(docs, tripID)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		for _, a := range atts {
			docs[i].Attachments = append(docs[i].Attachments, newAttachmentDoc(a))
		}
		return docs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("localstore.TripStore.AddAttachments: %w", err)
	}
	return atts, nil
}

// ApplyTransition checks the current status against tr.From under the store
// mutex, so two transitions racing in this process cannot both succeed.
func (s *TripStore) ApplyTransition(ctx context.Context, tripID uuid.UUID, tr domain.Transition) (domain.Trip, error) {
	var result domain.Trip
	err := s.mutate(ctx, func(docs []tripDoc) ([]tripDoc, error) {
		i := indexOf(docs, tripID)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		t := docs[i].trip()
		if t.Status != tr.From {
			return nil, domain.ErrInvalidTransition
		}
		t.Status = tr.To
		t.UpdatedAt = tr.At
		t.Timeline = append([]domain.TimelineEntry{tr.TimelineEntry()}, t.Timeline...)
		if tr.Comment != nil {
			t.Comments = append([]domain.Comment{*tr.Comment}, t.Comments...)
		}
		docs[i] = newTripDoc(t)
		result = t
		return docs, nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("localstore.TripStore.ApplyTransition: %w", err)
	}
	return result, nil
}

// Source is the authoritative store a cache is filled from.
type Source interface {
	List(ctx context.Context, filter domain.TripFilter) ([]domain.Trip, error)
}

// Pull replaces the cached trips with a snapshot of src and returns how many
// were copied. Sync is one way: nothing in the cache is pushed back, and
// local changes made before the pull are discarded.
func (s *TripStore) Pull(ctx context.Context, src Source) (int, error) {
	trips, err := src.List(ctx, domain.TripFilter{})
	if err != nil {
		return 0, fmt.Errorf("localstore.TripStore.Pull: %w", err)
	}

	docs := make([]tripDoc, len(trips))
	for i, t := range trips {
		docs[i] = newTripDoc(t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, docs); err != nil {
		return 0, fmt.Errorf("localstore.TripStore.Pull: %w", err)
	}
	return len(docs), nil
}

// mutate runs one locked read-modify-write cycle. fn's error aborts the
// write and is returned as is.
func (s *TripStore) mutate(ctx context.Context, fn func([]tripDoc) ([]tripDoc, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx)
	if err != nil {
		return err
	}
	docs, err = fn(docs)
	if err != nil {
		return err
	}
	return s.save(ctx, docs)
}

func (s *TripStore) load(ctx context.Context) ([]tripDoc, error) {
	var docs []tripDoc
	if err := loadJSON(ctx, s.kv, TripsKey, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *TripStore) save(ctx context.Context, docs []tripDoc) error {
	return saveJSON(ctx, s.kv, TripsKey, docs)
}

// NotificationLog keeps the most recent domain.MaxNotifications records as
// one JSON array under NotificationsKey, newest first.
type NotificationLog struct {
	kv KV
	mu sync.Mutex
}

// NewNotificationLog returns a NotificationLog over kv.
func NewNotificationLog(kv KV) *NotificationLog {
	return &NotificationLog{kv: kv}
}

// Record prepends n and truncates the log to its cap.
func (l *NotificationLog) Record(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var docs []notificationDoc
	if err := loadJSON(ctx, l.kv, NotificationsKey, &docs); err != nil {
		return domain.Notification{}, fmt.Errorf("localstore.NotificationLog.Record: %w", err)
	}
	docs = append([]notificationDoc{newNotificationDoc(n)}, docs...)
	if len(docs) > domain.MaxNotifications {
		docs = docs[:domain.MaxNotifications]
	}
	if err := saveJSON(ctx, l.kv, NotificationsKey, docs); err != nil {
		return domain.Notification{}, fmt.Errorf("localstore.NotificationLog.Record: %w", err)
	}
	return n, nil
}

func (l *NotificationLog) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	var docs []notificationDoc
	if err := loadJSON(ctx, l.kv, NotificationsKey, &docs); err != nil {
		return nil, fmt.Errorf("localstore.NotificationLog.List: %w", err)
	}

	var matched []domain.Notification
	for _, d := range docs {
		if filter.Recipient != "" && !strings.EqualFold(d.To, filter.Recipient) {
			continue
		}
		matched = append(matched, d.notification())
	}
	start, end := filter.Page.Window(len(matched))
	return matched[start:end], nil
}

func loadJSON(ctx context.Context, kv KV, key string, dst any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func saveJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

func indexOf(docs []tripDoc, id uuid.UUID) int {
	return slices.IndexFunc(docs, func(d tripDoc) bool { return d.ID == id })
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
