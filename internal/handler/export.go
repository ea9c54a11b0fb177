package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/report"
)

const exportTitle = "Trip Report"

// ExportRow is one row of the JSON export.
type ExportRow struct {
	TripID       uuid.UUID           `json:"tripId"`
	Requester    string              `json:"requester"`
	Email        string              `json:"email"`
	Department   string              `json:"department"`
	Destination  string              `json:"destination"`
	StartDate    *openapi_types.Date `json:"startDate,omitempty"`
	EndDate      *openapi_types.Date `json:"endDate,omitempty"`
	Status       string              `json:"status"`
	CostEstimate float64             `json:"costEstimate"`
	RiskLevel    string              `json:"riskLevel"`
	LastActor    string              `json:"lastActor"`
	Comments     int                 `json:"comments"`
	Attachments  int                 `json:"attachments"`
}

// getExport handles GET /export.
// It returns one row per trip matching the same filters as GET /trips.
// Use ?format=csv or ?format=pdf for a download; default is JSON.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json", "csv", "pdf":
	default:
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid format: must be json, csv or pdf")
		return
	}

	rows, err := s.export.Export(r.Context(), tripFilter(r))
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}

	switch format {
	case "csv":
		body, err := report.RenderCSV(report.TripDataset(rows))
		if err != nil {
			s.writeServiceError(w, r, err, tripNotFound)
			return
		}
		s.writeDownload(w, r, "text/csv; charset=utf-8", "trips.csv", body)
	case "pdf":
		body, err := report.RenderPDF(report.TripDataset(rows), exportTitle)
		if err != nil {
			s.writeServiceError(w, r, err, tripNotFound)
			return
		}
		s.writeDownload(w, r, "application/pdf", "trips.pdf", body)
	default:
		out := make([]ExportRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, exportRowToResponse(row))
		}
		s.writeJSON(w, r, http.StatusOK, out)
	}
}

func (s *Server) writeDownload(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}

// exportRowToResponse maps a domain.ExportRow to its JSON form.
// Zero dates become nil pointers (omitted in JSON).
func exportRowToResponse(r domain.ExportRow) ExportRow {
	return ExportRow{
		TripID:       r.TripID,
		Requester:    r.Requester,
		Email:        r.Email,
		Department:   r.Department,
		Destination:  r.Destination,
		StartDate:    optionalDate(r.StartDate),
		EndDate:      optionalDate(r.EndDate),
		Status:       string(r.Status),
		CostEstimate: r.CostEstimate,
		RiskLevel:    string(r.RiskLevel),
		LastActor:    r.LastActor,
		Comments:     r.Comments,
		Attachments:  r.Attachments,
	}
}

func optionalDate(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: t}
}
