package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/handler"
)

// newExportHTTPHandler wires a Server with only the export service mock.
func newExportHTTPHandler(exportSvc handler.ExportServicer) http.Handler {
	return handler.NewServer(nil, nil, exportSvc, nil, nil).Handler()
}

// exportRowFixture returns a fully-populated domain.ExportRow for testing.
func exportRowFixture() domain.ExportRow {
	return domain.ExportRow{
		TripID:       uuid.New(),
		Requester:    "Alice",
		Email:        "alice@example.com",
		Department:   "Sales",
		Destination:  "London, UK",
		StartDate:    time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC),
		Status:       domain.StatusApproved,
		CostEstimate: 2800,
		RiskLevel:    domain.RiskMedium,
		LastActor:    "Bob",
		Comments:     1,
		Attachments:  2,
	}
}

func staticExport(rows ...domain.ExportRow) *mockExportServicer {
	return &mockExportServicer{
		export: func(context.Context, domain.TripFilter) ([]domain.ExportRow, error) { return rows, nil },
	}
}

// ---- GET /export (JSON) ----------------------------------------------------

func TestGetExport_DefaultJSON_EmptyResult(t *testing.T) {
	rec := do(newExportHTTPHandler(staticExport()), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetExport_JSON_Row(t *testing.T) {
	row := exportRowFixture()

	rec := do(newExportHTTPHandler(staticExport(row)), http.MethodGet, "/export?format=json", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	require.Len(t, raw, 1)
	assert.Equal(t, row.TripID.String(), raw[0]["tripId"])
	assert.Equal(t, "2025-10-20", raw[0]["startDate"])
	assert.Equal(t, "approved", raw[0]["status"])
	assert.Equal(t, "Medium", raw[0]["riskLevel"])
	assert.Equal(t, "Bob", raw[0]["lastActor"])
	assert.EqualValues(t, 2, raw[0]["attachments"])
}

func TestGetExport_JSON_OmitsMissingDates(t *testing.T) {
	row := exportRowFixture()
	row.StartDate, row.EndDate = time.Time{}, time.Time{}

	rec := do(newExportHTTPHandler(staticExport(row)), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "startDate")
	assert.NotContains(t, raw[0], "endDate")
	assert.Equal(t, row.TripID.String(), raw[0]["tripId"])
}

func TestGetExport_PassesTripFilters(t *testing.T) {
	var got domain.TripFilter
	svc := &mockExportServicer{
		export: func(_ context.Context, f domain.TripFilter) ([]domain.ExportRow, error) {
			got = f
			return nil, nil
		},
	}

	rec := do(newExportHTTPHandler(svc), http.MethodGet, "/export?status=approved&department=sales", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TripFilter{Status: "approved", Department: "sales"}, got)
}

// ---- GET /export?format=csv ------------------------------------------------

func TestGetExport_CSV(t *testing.T) {
	row := exportRowFixture()

	rec := do(newExportHTTPHandler(staticExport(row)), http.MethodGet, "/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "trips.csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, row.TripID.String(), records[1][0])
	assert.Contains(t, records[1], "London, UK")
}

// ---- GET /export?format=pdf ------------------------------------------------

func TestGetExport_PDF(t *testing.T) {
	rec := do(newExportHTTPHandler(staticExport(exportRowFixture())), http.MethodGet, "/export?format=PDF", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

// ---- errors ----------------------------------------------------------------

func TestGetExport_400_UnknownFormat(t *testing.T) {
	rec := do(newExportHTTPHandler(staticExport()), http.MethodGet, "/export?format=xlsx", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExport_500_ServiceError(t *testing.T) {
	svc := &mockExportServicer{
		export: func(context.Context, domain.TripFilter) ([]domain.ExportRow, error) {
			return nil, errors.Join(domain.ErrStore, errors.New("db down"))
		},
	}

	rec := do(newExportHTTPHandler(svc), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Code)
}
