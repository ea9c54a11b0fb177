package service

import "github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"

// Outcome labels passed to a Recorder.
const (
	OutcomeOK             = "ok"
	OutcomeForbidden      = "forbidden"
	OutcomeNotFound       = "not_found"
	OutcomeInvalid        = "invalid_transition"
	OutcomeError          = "error"
	OutcomeRecorded       = "recorded"
	OutcomeDelivered      = "delivered"
	OutcomeDeliveryFailed = "delivery_failed"
	OutcomeLogFailed      = "log_failed"
)

// Recorder counts lifecycle and notification outcomes.
// internal/metrics provides the Prometheus implementation.
type Recorder interface {
	Transition(action domain.Action, outcome string)
	Notification(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(domain.Action, string) {}
func (nopRecorder) Notification(string)              {}
