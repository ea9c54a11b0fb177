// Package domain contains the core data types for the travel admin API.
// This package has no external dependencies beyond uuid and is imported by
// every other internal package (repo, localstore, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is where a trip is in its approval lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"

	// StatusRequested only appears on the seed timeline entry written at
	// creation. A trip itself is never in this status.
	StatusRequested Status = "requested"
)

// Statuses lists every status a trip can hold, in lifecycle order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusActive, StatusCompleted}

// Valid reports whether s is a status a trip can hold.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// RiskLevel is the requester's free-choice risk assessment. It is never derived.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Trip is a travel request and its full approval and execution history.
// Timeline and Comments are newest first; Attachments are in upload order.
type Trip struct {
	ID             uuid.UUID
	Requester      string
	RequesterEmail string
	Department     string
	Destination    string
	Start          time.Time // calendar date, no time zone semantics
	End            time.Time // not validated against Start
	Purpose        string
	CostEstimate   float64
	RiskLevel      RiskLevel
	Status         Status
	Timeline       []TimelineEntry
	Comments       []Comment
	Attachments    []Attachment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TimelineEntry records one status transition. Entries are immutable.
type TimelineEntry struct {
	At     time.Time
	Status Status
	User   string
}

// Comment is a free-text note on a trip, standalone or attached to a transition.
type Comment struct {
	ID     uuid.UUID
	Author string
	Text   string
	At     time.Time
}

// Attachment is file metadata. StorageKey is empty when the client only
// registered metadata and the bytes live elsewhere.
type Attachment struct {
	ID         uuid.UUID
	Filename   string
	SizeBytes  int64
	MimeType   string
	StorageKey string
	At         time.Time
}

// TripDraft carries the fields accepted when a trip is requested.
// Validation tags are evaluated by the service layer. The cost bound is the
// largest value the trips.cost_estimate NUMERIC(12, 2) column holds, so every
// store accepts the same drafts.
type TripDraft struct {
	Requester      string    `json:"requester" validate:"required"`
	RequesterEmail string    `json:"requesterEmail" validate:"omitempty,email"`
	Department     string    `json:"department"`
	Destination    string    `json:"destination" validate:"required"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Purpose        string    `json:"purpose"`
	CostEstimate   float64   `json:"costEstimate" validate:"gte=0,lte=9999999999.99"`
	RiskLevel      RiskLevel `json:"riskLevel" validate:"omitempty,oneof=Low Medium High"`
}

// TripUpdate is the whitelist of fields a caller may change directly.
// Nil pointers leave the stored value untouched. Status, timeline,
// comments and attachments have no field here; they only change through
// lifecycle transitions and the append operations.
type TripUpdate struct {
	Requester      *string    `json:"requester" validate:"omitempty,min=1"`
	RequesterEmail *string    `json:"requesterEmail" validate:"omitempty,email"`
	Department     *string    `json:"department"`
	Destination    *string    `json:"destination" validate:"omitempty,min=1"`
	Start          *time.Time `json:"start"`
	End            *time.Time `json:"end"`
	Purpose        *string    `json:"purpose"`
	CostEstimate   *float64   `json:"costEstimate" validate:"omitempty,gte=0,lte=9999999999.99"`
	RiskLevel      *RiskLevel `json:"riskLevel" validate:"omitempty,oneof=Low Medium High"`
}

// Empty reports whether no field is set.
func (u TripUpdate) Empty() bool {
	return u.Requester == nil && u.RequesterEmail == nil && u.Department == nil &&
		u.Destination == nil && u.Start == nil && u.End == nil && u.Purpose == nil &&
		u.CostEstimate == nil && u.RiskLevel == nil
}

// Apply merges the set fields of u into t and returns the result.
// Used by stores that cannot merge in their query language.
func (u TripUpdate) Apply(t Trip) Trip {
	if u.Requester != nil {
		t.Requester = *u.Requester
	}
	if u.RequesterEmail != nil {
		t.RequesterEmail = *u.RequesterEmail
	}
	if u.Department != nil {
		t.Department = *u.Department
	}
	if u.Destination != nil {
		t.Destination = *u.Destination
	}
	if u.Start != nil {
		t.Start = *u.Start
	}
	if u.End != nil {
		t.End = *u.End
	}
	if u.Purpose != nil {
		t.Purpose = *u.Purpose
	}
	if u.CostEstimate != nil {
		t.CostEstimate = *u.CostEstimate
	}
	if u.RiskLevel != nil {
		t.RiskLevel = *u.RiskLevel
	}
	return t
}

// TripFilter narrows List results. Status is an exact match ("" and "all"
// disable it); the other fields are case-insensitive substring matches.
type TripFilter struct {
	Status      string
	Department  string
	Destination string
	Requester   string
}

// StatusFilter returns the status to match, or "" when the filter is off.
func (f TripFilter) StatusFilter() Status {
	if f.Status == "" || f.Status == "all" {
		return ""
	}
	return Status(f.Status)
}
