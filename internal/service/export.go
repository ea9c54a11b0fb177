package service

import (
	"context"
	"fmt"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/repo"
)

// ExportService flattens trips into report rows.
type ExportService struct {
	trips repo.TripRepo
}

// NewExportService constructs an ExportService backed by the provided store.
func NewExportService(trips repo.TripRepo) *ExportService {
	return &ExportService{trips: trips}
}

// Export returns one ExportRow per trip matching filter, newest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, filter domain.TripFilter) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", storeErr(err))
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, domain.NewExportRow(t))
	}
	return rows, nil
}
