package handler

import (
	"net/http"
	"strings"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

// Identity headers set by the upstream gateway. Authentication happens
// there; this API trusts them.
const (
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"
)

// TransitionRequest is the body of the lifecycle routes. All fields are
// optional. Approve reads Comment, reject reads Reason (falling back to
// Comment), start and complete read UserName.
type TransitionRequest struct {
	ApproverName string `json:"approverName"`
	UserName     string `json:"userName"`
	Comment      string `json:"comment"`
	Reason       string `json:"reason"`
	Notify       *bool  `json:"notify"`
}

var transitionMessages = map[domain.Action]string{
	domain.ActionApprove:  "Trip approved",
	domain.ActionReject:   "Trip rejected",
	domain.ActionStart:    "Trip started",
	domain.ActionComplete: "Trip completed",
}

// transition returns the handler for POST /trips/{id}/{action}.
func (s *Server) transition(action domain.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.pathID(w, r, "id")
		if !ok {
			return
		}
		var body TransitionRequest
		if err := decodeOptionalBody(r, &body); err != nil {
			s.writeDecodeError(w, r, err)
			return
		}

		in := transitionInput(r, action, body)

		var (
			trip domain.Trip
			err  error
		)
		switch action {
		case domain.ActionApprove:
			trip, err = s.trips.Approve(r.Context(), id, in)
		case domain.ActionReject:
			trip, err = s.trips.Reject(r.Context(), id, in)
		case domain.ActionStart:
			trip, err = s.trips.Start(r.Context(), id, in)
		case domain.ActionComplete:
			trip, err = s.trips.Complete(r.Context(), id, in)
		}
		if err != nil {
			s.writeServiceError(w, r, err, tripNotFound)
			return
		}

		resp := tripToResponse(trip)
		s.writeJSON(w, r, http.StatusOK, SuccessResponse{
			Success: true,
			Message: transitionMessages[action],
			Trip:    &resp,
		})
	}
}

// transitionInput resolves the acting user and note for a lifecycle call.
// The display name is taken from the body first, then the gateway header;
// the service applies its default when both are empty.
func transitionInput(r *http.Request, action domain.Action, body TransitionRequest) service.TransitionInput {
	name := firstNonEmpty(body.ApproverName, body.UserName, r.Header.Get(HeaderUserName))

	note := body.Comment
	if action == domain.ActionReject {
		note = firstNonEmpty(body.Reason, body.Comment)
	}

	notify := true
	if body.Notify != nil {
		notify = *body.Notify
	}

	return service.TransitionInput{
		Actor: domain.Actor{
			Name: name,
			Role: domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))),
		},
		Comment: note,
		Notify:  notify,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
