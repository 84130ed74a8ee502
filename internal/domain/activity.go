// Package domain defines the activity model and business logic for the effort tracker.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// ActivityType identifies the kind of sales effort being logged.
type ActivityType string

const (
	TypeCall         ActivityType = "call"
	TypeEmail        ActivityType = "email"
	TypeMeeting      ActivityType = "meeting"
	TypeProposal     ActivityType = "proposal"
	TypeFollowUp     ActivityType = "follow_up"
	TypeNetworking   ActivityType = "networking"
	TypeResearch     ActivityType = "research"
	TypePresentation ActivityType = "presentation"
	TypeContract     ActivityType = "contract"
	TypeTraining     ActivityType = "training"
	TypeAdmin        ActivityType = "admin"
	TypeOther        ActivityType = "other"
)

// DefaultType is what the submission form starts from and resets to.
const DefaultType = TypeCall

// ActivityTypes lists every valid type in display order.
var ActivityTypes = []ActivityType{
	TypeCall, TypeEmail, TypeMeeting, TypeProposal, TypeFollowUp, TypeNetworking,
	TypeResearch, TypePresentation, TypeContract, TypeTraining, TypeAdmin, TypeOther,
}

var activityLabels = map[ActivityType]string{
	TypeCall:         "Phone Call",
	TypeEmail:        "Email",
	TypeMeeting:      "Meeting",
	TypeProposal:     "Proposal",
	TypeFollowUp:     "Follow Up",
	TypeNetworking:   "Networking",
	TypeResearch:     "Research",
	TypePresentation: "Presentation",
	TypeContract:     "Contract",
	TypeTraining:     "Training",
	TypeAdmin:        "Administrative",
	TypeOther:        "Other",
}

// countableTypes records quantity alongside the event.
var countableTypes = map[ActivityType]struct{}{
	TypeCall:     {},
	TypeEmail:    {},
	TypeProposal: {},
	TypeFollowUp: {},
}

// Valid reports whether t is a member of the closed enumeration.
func (t ActivityType) Valid() bool {
	_, ok := activityLabels[t]
	return ok
}

// Countable reports whether a count is recorded for this type.
func (t ActivityType) Countable() bool {
	_, ok := countableTypes[t]
	return ok
}

// Label returns the human-readable name for the type.
func (t ActivityType) Label() string {
	if label, ok := activityLabels[t]; ok {
		return label
	}
	return string(t)
}

// ClampCount coerces any value to an integer of at least 1.
func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ParseCount interprets raw user input as a count. Empty, non-numeric and
// sub-1 input all coerce to 1.
func ParseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return ClampCount(n)
}

// Activity is a logged unit of sales effort, owned by the submitting user.
// Count is set only when the type is countable.
type Activity struct {
	ID        string
	Type      ActivityType
	Timestamp time.Time
	Notes     string
	UserID    string
	LOID      string
	Count     *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffortUnits is the contribution of the activity to daily totals: countable
// activities weigh their count, everything else weighs 1.
func (a Activity) EffortUnits() int {
	if a.Count != nil {
		return *a.Count
	}
	return 1
}
