package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is a lifecycle operation applied to a trip.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

// Actions lists every lifecycle action.
var Actions = []Action{ActionApprove, ActionReject, ActionStart, ActionComplete}

// edges is the complete transition table. Anything not listed is invalid.
//
//	pending  --approve--> approved --start--> active --complete--> completed
//	pending  --reject-->  rejected
//	approved --reject-->  rejected   (withdrawal after approval)
var edges = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionStart:  StatusActive,
		ActionReject: StatusRejected,
	},
	StatusActive: {
		ActionComplete: StatusCompleted,
	},
}

// NextStatus returns the status reached by applying action to a trip in
// status from. ok is false when the edge does not exist.
func NextStatus(from Status, action Action) (to Status, ok bool) {
	to, ok = edges[from][action]
	return to, ok
}

// RequiresReviewer reports whether the action is a judgment call that only
// managers and finance may make. Start and complete are operational.
func (a Action) RequiresReviewer() bool {
	return a == ActionApprove || a == ActionReject
}

// Role is the capability of an acting user.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleFinance  Role = "finance"
)

// Actor is the user performing an operation.
type Actor struct {
	Name string
	Role Role
}

// CanReview reports whether the actor may approve or reject trips.
func (a Actor) CanReview() bool {
	return a.Role == RoleManager || a.Role == RoleFinance
}

// Permits reports whether the actor holds the capability action requires.
func (a Actor) Permits(action Action) bool {
	if action.RequiresReviewer() {
		return a.CanReview()
	}
	return true
}

// Transition is a fully resolved status change handed to a store.
// Stores apply it atomically: the status compare-and-swap From→To, one
// timeline entry, and one comment when Comment is non-nil.
type Transition struct {
	Action  Action
	From    Status
	To      Status
	User    string
	At      time.Time
	Comment *Comment
}

// TimelineEntry returns the entry this transition appends.
func (t Transition) TimelineEntry() TimelineEntry {
	return TimelineEntry{At: t.At, Status: t.To, User: t.User}
}

// NewComment builds a comment with a fresh id.
func NewComment(author, text string, at time.Time) Comment {
	return Comment{ID: uuid.New(), Author: author, Text: text, At: at}
}
