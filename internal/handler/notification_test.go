package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/handler"
)

func newNotificationHandler(svc handler.NotificationServicer) http.Handler {
	return handler.NewServer(nil, svc, nil, nil, nil).Handler()
}

func TestListNotifications_200(t *testing.T) {
	n := domain.Notification{
		ID:        uuid.New(),
		TripID:    uuid.New(),
		Recipient: "alice@example.com",
		Subject:   "Your trip request to London is approved",
		Body:      "Hi Alice",
		At:        time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	var gotRecipient string
	var gotPage domain.PaginationParams
	svc := &mockNotificationServicer{
		list: func(_ context.Context, recipient string, page domain.PaginationParams) ([]domain.Notification, error) {
			gotRecipient, gotPage = recipient, page
			return []domain.Notification{n}, nil
		},
	}

	rec := do(newNotificationHandler(svc), http.MethodGet, "/notifications?email=alice@example.com&page=2&limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", gotRecipient)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 10}, gotPage)

	var resp []handler.NotificationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, n.ID, resp[0].ID)
	assert.Equal(t, n.TripID, resp[0].TripID)
	assert.Equal(t, "alice@example.com", resp[0].To)
	assert.Equal(t, n.MailtoURL(), resp[0].Mailto)
	assert.Contains(t, resp[0].Mailto, "mailto:alice@example.com?")
}

func TestListNotifications_Defaults(t *testing.T) {
	var gotPage domain.PaginationParams
	svc := &mockNotificationServicer{
		list: func(_ context.Context, _ string, page domain.PaginationParams) ([]domain.Notification, error) {
			gotPage = page
			return nil, nil
		},
	}

	rec := do(newNotificationHandler(svc), http.MethodGet, "/notifications", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: domain.MaxNotifications}, gotPage)
}

func TestListNotifications_400_BadLimit(t *testing.T) {
	rec := do(newNotificationHandler(&mockNotificationServicer{}), http.MethodGet, "/notifications?limit=ten", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestListNotifications_HugePageIsEmpty(t *testing.T) {
	var gotPage domain.PaginationParams
	svc := &mockNotificationServicer{
		list: func(_ context.Context, _ string, page domain.PaginationParams) ([]domain.Notification, error) {
			gotPage = page
			return nil, nil
		},
	}

	rec := do(newNotificationHandler(svc), http.MethodGet, "/notifications?page=9223372036854775807", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.GreaterOrEqual(t, gotPage.Offset(), domain.MaxNotifications, "page lies past the retained log")
}
