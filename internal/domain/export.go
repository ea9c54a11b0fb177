package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRow is a single row in the trip report export.
// It is a flat, denormalized view with one row per trip; child collections
// are reduced to counts and the most recent timeline actor.
type ExportRow struct {
	TripID       uuid.UUID
	Requester    string
	Email        string
	Department   string
	Destination  string
	StartDate    time.Time // zero when the trip has no date
	EndDate      time.Time
	Status       Status
	CostEstimate float64
	RiskLevel    RiskLevel
	LastActor    string // user on the newest timeline entry, "" when none
	Comments     int
	Attachments  int
}

// NewExportRow flattens a trip into a report row.
func NewExportRow(t Trip) ExportRow {
	row := ExportRow{
		TripID:       t.ID,
		Requester:    t.Requester,
		Email:        t.RequesterEmail,
		Department:   t.Department,
		Destination:  t.Destination,
		StartDate:    t.Start,
		EndDate:      t.End,
		Status:       t.Status,
		CostEstimate: t.CostEstimate,
		RiskLevel:    t.RiskLevel,
		Comments:     len(t.Comments),
		Attachments:  len(t.Attachments),
	}
	if len(t.Timeline) > 0 {
		row.LastActor = t.Timeline[0].User
	}
	return row
}
