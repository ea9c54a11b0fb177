package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNotifications caps the recent-notifications log. Older records are pruned.
const MaxNotifications = 100

// Notification is a record of one outbound message about a trip.
// TripID is a weak reference: the trip may since have been deleted.
// Records are never mutated.
type Notification struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	Recipient string
	Subject   string
	Body      string
	At        time.Time
}

// MailtoURL returns a mailto: deep link that opens the message in the
// user's mail client, for manual sending when no transport is configured.
func (n Notification) MailtoURL() string {
	q := url.Values{}
	q.Set("subject", n.Subject)
	q.Set("body", n.Body)
	// url.Values encodes spaces as "+", which mail clients show literally.
	return "mailto:" + url.PathEscape(n.Recipient) + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// NotificationFilter narrows a notification listing to one recipient.
// An empty Recipient matches all.
type NotificationFilter struct {
	Recipient string
	Page      PaginationParams
}
