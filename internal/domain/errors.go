package domain

import "errors"

// ErrNotFound is returned by store and service functions when the requested
// trip does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing requester, unknown risk level).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidTransition is returned when the requested status change is not
// an edge of the lifecycle state machine from the trip's current status.
// Nothing is written. Handlers should map this to HTTP 409 Conflict.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrForbidden is returned when the acting user lacks the role required for
// an operation. Nothing is written. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrStore marks a failure of the underlying persistence (connectivity,
// constraint violation, serialization). Multi-statement writes that fail
// with ErrStore have been rolled back.
var ErrStore = errors.New("store failure")
