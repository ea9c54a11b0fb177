package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

const tripNotFound = "trip not found"

// TripResponse is the wire form of a trip, children included.
type TripResponse struct {
	ID             uuid.UUID            `json:"id"`
	Requester      string               `json:"requester"`
	RequesterEmail string               `json:"requesterEmail"`
	Department     string               `json:"department"`
	Destination    string               `json:"destination"`
	Start          openapi_types.Date   `json:"start"`
	End            openapi_types.Date   `json:"end"`
	Purpose        string               `json:"purpose"`
	CostEstimate   float64              `json:"costEstimate"`
	RiskLevel      domain.RiskLevel     `json:"riskLevel"`
	Status         domain.Status        `json:"status"`
	Timeline       []TimelineResponse   `json:"timeline"`
	Comments       []CommentResponse    `json:"comments"`
	Attachments    []AttachmentResponse `json:"attachments"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// TimelineResponse is one status history entry.
type TimelineResponse struct {
	At     time.Time     `json:"ts"`
	Status domain.Status `json:"status"`
	User   string        `json:"user"`
}

// CommentResponse is one comment.
type CommentResponse struct {
	ID     uuid.UUID `json:"id"`
	Author string    `json:"by"`
	Text   string    `json:"text"`
	At     time.Time `json:"ts"`
}

// AttachmentResponse is one attachment's metadata. Stored is true when the
// bytes can be downloaded from this API.
type AttachmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"name"`
	SizeBytes int64     `json:"size"`
	MimeType  string    `json:"type"`
	Stored    bool      `json:"stored"`
	At        time.Time `json:"ts"`
}

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Requester      string              `json:"requester"`
	RequesterEmail string              `json:"requesterEmail"`
	Department     string              `json:"department"`
	Destination    string              `json:"destination"`
	Start          *openapi_types.Date `json:"start"`
	End            *openapi_types.Date `json:"end"`
	Purpose        string              `json:"purpose"`
	CostEstimate   float64             `json:"costEstimate"`
	RiskLevel      domain.RiskLevel    `json:"riskLevel"`
}

// UpdateTripRequest is the body of PUT /trips/{id}. Absent fields are left
// unchanged; status and history cannot be set here.
type UpdateTripRequest struct {
	Requester      *string             `json:"requester"`
	RequesterEmail *string             `json:"requesterEmail"`
	Department     *string             `json:"department"`
	Destination    *string             `json:"destination"`
	Start          *openapi_types.Date `json:"start"`
	End            *openapi_types.Date `json:"end"`
	Purpose        *string             `json:"purpose"`
	CostEstimate   *float64            `json:"costEstimate"`
	RiskLevel      *domain.RiskLevel   `json:"riskLevel"`
}

// SuccessResponse acknowledges an operation that has no resource to return.
type SuccessResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Trip    *TripResponse `json:"trip,omitempty"`
}

// listTrips handles GET /trips.
// Supports ?status= (exact, "all" disables) and case-insensitive substring
// filters ?department=, ?destination= and ?requester=.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context(), tripFilter(r))
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, tripToResponse(t))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// getTrip handles GET /trips/{id}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tripToResponse(trip))
}

// createTrip handles POST /trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	created, err := s.trips.Create(r.Context(), requestToDraft(body))
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, tripToResponse(created))
}

// updateTrip handles PUT /trips/{id}.
func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	updated, err := s.trips.Update(r.Context(), id, requestToUpdate(body))
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tripToResponse(updated))
}

// deleteTrip handles DELETE /trips/{id}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeJSON(w, r, http.StatusOK, SuccessResponse{Success: true, Message: "Trip deleted"})
}

// --- request helpers --------------------------------------------------------

// pathID parses a UUID path parameter, answering 400 when it is malformed.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid "+param+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON body into v. An empty body is an error.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

// decodeOptionalBody is decodeBody for routes whose body may be omitted.
func decodeOptionalBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func tripFilter(r *http.Request) domain.TripFilter {
	q := r.URL.Query()
	return domain.TripFilter{
		Status:      q.Get("status"),
		Department:  q.Get("department"),
		Destination: q.Get("destination"),
		Requester:   q.Get("requester"),
	}
}

// --- mapping helpers --------------------------------------------------------

func requestToDraft(body CreateTripRequest) domain.TripDraft {
	d := domain.TripDraft{
		Requester:      body.Requester,
		RequesterEmail: body.RequesterEmail,
		Department:     body.Department,
		Destination:    body.Destination,
		Purpose:        body.Purpose,
		CostEstimate:   body.CostEstimate,
		RiskLevel:      body.RiskLevel,
	}
	if body.Start != nil {
		d.Start = body.Start.Time
	}
	if body.End != nil {
		d.End = body.End.Time
	}
	return d
}

func requestToUpdate(body UpdateTripRequest) domain.TripUpdate {
	u := domain.TripUpdate{
		Requester:      body.Requester,
		RequesterEmail: body.RequesterEmail,
		Department:     body.Department,
		Destination:    body.Destination,
		Purpose:        body.Purpose,
		CostEstimate:   body.CostEstimate,
		RiskLevel:      body.RiskLevel,
	}
	if body.Start != nil {
		u.Start = &body.Start.Time
	}
	if body.End != nil {
		u.End = &body.End.Time
	}
	return u
}

// tripToResponse converts a domain.Trip into its wire form. Child
// collections are always arrays, never null.
func tripToResponse(t domain.Trip) TripResponse {
	resp := TripResponse{
		ID:             t.ID,
		Requester:      t.Requester,
		RequesterEmail: t.RequesterEmail,
		Department:     t.Department,
		Destination:    t.Destination,
		Start:          openapi_types.Date{Time: t.Start},
		End:            openapi_types.Date{Time: t.End},
		Purpose:        t.Purpose,
		CostEstimate:   t.CostEstimate,
		RiskLevel:      t.RiskLevel,
		Status:         t.Status,
		Timeline:       make([]TimelineResponse, 0, len(t.Timeline)),
		Comments:       make([]CommentResponse, 0, len(t.Comments)),
		Attachments:    make([]AttachmentResponse, 0, len(t.Attachments)),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	for _, e := range t.Timeline {
		resp.Timeline = append(resp.Timeline, TimelineResponse{At: e.At, Status: e.Status, User: e.User})
	}
	for _, c := range t.Comments {
		resp.Comments = append(resp.Comments, commentToResponse(c))
	}
	for _, a := range t.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentToResponse(a))
	}
	return resp
}

func commentToResponse(c domain.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Author: c.Author, Text: c.Text, At: c.At}
}

func attachmentToResponse(a domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		Filename:  a.Filename,
		SizeBytes: a.SizeBytes,
		MimeType:  a.MimeType,
		Stored:    a.StorageKey != "",
		At:        a.At,
	}
}
