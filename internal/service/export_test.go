package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

func TestExportService_Export(t *testing.T) {
	trip := domain.Trip{
		ID:             uuid.New(),
		Requester:      "Alice",
		RequesterEmail: "alice@example.com",
		Department:     "Sales",
		Destination:    "London",
		Start:          time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC),
		CostEstimate:   2800,
		RiskLevel:      domain.RiskMedium,
		Status:         domain.StatusApproved,
		Timeline: []domain.TimelineEntry{
			{Status: domain.StatusApproved, User: "Bob"},
			{Status: domain.StatusRequested, User: "Alice"},
		},
		Comments:    []domain.Comment{{Text: "ok"}},
		Attachments: []domain.Attachment{{Filename: "a.pdf"}, {Filename: "b.pdf"}},
	}
	var seen domain.TripFilter
	svc := service.NewExportService(&mockTripRepo{
		list: func(_ context.Context, f domain.TripFilter) ([]domain.Trip, error) {
			seen = f
			return []domain.Trip{trip}, nil
		},
	})

	rows, err := svc.Export(context.Background(), domain.TripFilter{Status: "approved"})

	require.NoError(t, err)
	assert.Equal(t, "approved", seen.Status)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ExportRow{
		TripID:       trip.ID,
		Requester:    "Alice",
		Email:        "alice@example.com",
		Department:   "Sales",
		Destination:  "London",
		StartDate:    trip.Start,
		EndDate:      trip.End,
		Status:       domain.StatusApproved,
		CostEstimate: 2800,
		RiskLevel:    domain.RiskMedium,
		LastActor:    "Bob",
		Comments:     1,
		Attachments:  2,
	}, rows[0])
}

func TestExportService_Export_Empty(t *testing.T) {
	svc := service.NewExportService(&mockTripRepo{
		list: func(context.Context, domain.TripFilter) ([]domain.Trip, error) { return nil, nil },
	})

	rows, err := svc.Export(context.Background(), domain.TripFilter{})

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_StoreError(t *testing.T) {
	svc := service.NewExportService(&mockTripRepo{
		list: func(context.Context, domain.TripFilter) ([]domain.Trip, error) { return nil, errors.New("boom") },
	})

	_, err := svc.Export(context.Background(), domain.TripFilter{})

	assert.ErrorIs(t, err, domain.ErrStore)
}
