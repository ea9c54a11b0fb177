package localstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

// tripDoc is the stored JSON shape of a trip. Field names follow the
// browser client; the id type and the createdAt/updatedAt pair do not.
type tripDoc struct {
	ID             uuid.UUID       `json:"id"`
	Requester      string          `json:"requester"`
	RequesterEmail string          `json:"requesterEmail,omitempty"`
	Department     string          `json:"department,omitempty"`
	Destination    string          `json:"destination"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Purpose        string          `json:"purpose,omitempty"`
	CostEstimate   float64         `json:"costEstimate"`
	RiskLevel      string          `json:"riskLevel"`
	Status         string          `json:"status"`
	Timeline       []timelineDoc   `json:"timeline"`
	Comments       []commentDoc    `json:"comments"`
	Attachments    []attachmentDoc `json:"attachments"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type timelineDoc struct {
	TS     time.Time `json:"ts"`
	Status string    `json:"status"`
	User   string    `json:"user"`
}

type commentDoc struct {
	ID   uuid.UUID `json:"id"`
	By   string    `json:"by"`
	TS   time.Time `json:"ts"`
	Text string    `json:"text"`
}

type attachmentDoc struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Size int64     `json:"size"`
	Type string    `json:"type"`
	Key  string    `json:"key,omitempty"`
	TS   time.Time `json:"ts"`
}

type notificationDoc struct {
	ID      uuid.UUID `json:"id"`
	TripID  uuid.UUID `json:"tripId"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	TS      time.Time `json:"ts"`
}

func newTripDoc(t domain.Trip) tripDoc {
	d := tripDoc{
		ID:             t.ID,
		Requester:      t.Requester,
		RequesterEmail: t.RequesterEmail,
		Department:     t.Department,
		Destination:    t.Destination,
		Start:          domain.FormatDate(t.Start),
		End:            domain.FormatDate(t.End),
		Purpose:        t.Purpose,
		CostEstimate:   t.CostEstimate,
		RiskLevel:      string(t.RiskLevel),
		Status:         string(t.Status),
		Timeline:       make([]timelineDoc, 0, len(t.Timeline)),
		Comments:       make([]commentDoc, 0, len(t.Comments)),
		Attachments:    make([]attachmentDoc, 0, len(t.Attachments)),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	for _, e := range t.Timeline {
		d.Timeline = append(d.Timeline, timelineDoc{TS: e.At, Status: string(e.Status), User: e.User})
	}
	for _, c := range t.Comments {
		d.Comments = append(d.Comments, newCommentDoc(c))
	}
	for _, a := range t.Attachments {
		d.Attachments = append(d.Attachments, newAttachmentDoc(a))
	}
	return d
}

func (d tripDoc) trip() domain.Trip {
	t := domain.Trip{
		ID:             d.ID,
		Requester:      d.Requester,
		RequesterEmail: d.RequesterEmail,
		Department:     d.Department,
		Destination:    d.Destination,
		Start:          parseDate(d.Start),
		End:            parseDate(d.End),
		Purpose:        d.Purpose,
		CostEstimate:   d.CostEstimate,
		RiskLevel:      domain.RiskLevel(d.RiskLevel),
		Status:         domain.Status(d.Status),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, e := range d.Timeline {
		t.Timeline = append(t.Timeline, domain.TimelineEntry{At: e.TS, Status: domain.Status(e.Status), User: e.User})
	}
	for _, c := range d.Comments {
		t.Comments = append(t.Comments, domain.Comment{ID: c.ID, Author: c.By, Text: c.Text, At: c.TS})
	}
	for _, a := range d.Attachments {
		t.Attachments = append(t.Attachments, domain.Attachment{
			ID: a.ID, Filename: a.Name, SizeBytes: a.Size, MimeType: a.Type, StorageKey: a.Key, At: a.TS,
		})
	}
	return t
}

func newCommentDoc(c domain.Comment) commentDoc {
	return commentDoc{ID: c.ID, By: c.Author, TS: c.At, Text: c.Text}
}

func newAttachmentDoc(a domain.Attachment) attachmentDoc {
	return attachmentDoc{ID: a.ID, Name: a.Filename, Size: a.SizeBytes, Type: a.MimeType, Key: a.StorageKey, TS: a.At}
}

func newNotificationDoc(n domain.Notification) notificationDoc {
	return notificationDoc{ID: n.ID, TripID: n.TripID, To: n.Recipient, Subject: n.Subject, Body: n.Body, TS: n.At}
}

func (d notificationDoc) notification() domain.Notification {
	return domain.Notification{ID: d.ID, TripID: d.TripID, Recipient: d.To, Subject: d.Subject, Body: d.Body, At: d.TS}
}

// parseDate accepts "2006-01-02". Anything else reads as the zero date.
func parseDate(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
