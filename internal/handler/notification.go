package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

// NotificationResponse is one recorded notification. Mailto opens the
// message in the user's mail client.
type NotificationResponse struct {
	ID      uuid.UUID `json:"id"`
	TripID  uuid.UUID `json:"tripId"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	At      time.Time `json:"ts"`
	Mailto  string    `json:"mailto"`
}

// listNotifications handles GET /notifications.
// ?email= narrows to one recipient (case-insensitive); ?page= and ?limit=
// page through the newest-first log (defaults: page=1, limit=100).
func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, ok := s.queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := s.queryInt(w, r, "limit")
	if !ok {
		return
	}

	list, err := s.notifications.List(r.Context(), r.URL.Query().Get("email"), domain.NewPaginationParams(page, limit))
	if err != nil {
		s.writeServiceError(w, r, err, "notification not found")
		return
	}

	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:      n.ID,
			TripID:  n.TripID,
			To:      n.Recipient,
			Subject: n.Subject,
			Body:    n.Body,
			At:      n.At,
			Mailto:  n.MailtoURL(),
		})
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// queryInt parses an optional integer query parameter, answering 400 when
// it is present but malformed.
func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid "+name+": must be an integer")
		return nil, false
	}
	return &v, true
}
