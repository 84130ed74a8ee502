// Package outbox persists and delivers domain events to Kafka.
package outbox

import "time"

// Event routing constants.
const (
	EventActivityCreated = "activity.created"
	TopicActivityEvents  = "lo_activity_events"
)

// ActivityCreated is the payload published when an activity is logged.
type ActivityCreated struct {
	ActivityID string    `json:"activity_id"`
	Type       string    `json:"activity_type"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	LOID       string    `json:"lo_id"`
	Count      *int      `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
