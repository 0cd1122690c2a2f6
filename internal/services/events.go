package services

import "time"

const (
	EventStudentReady   = "student_ready"
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
)

// SessionEvent describes a committed lifecycle transition.
type SessionEvent struct {
	Type            string    `json:"type"`
	SessionID       string    `json:"session_id"`
	ActorID         string    `json:"actor_id"`
	Status          string    `json:"status"`
	ReadyCount      int       `json:"ready_count,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Paid            *bool     `json:"paid,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// EventPublisher receives lifecycle events after the store commit. Publish
// must not block the caller.
type EventPublisher interface {
	Publish(event SessionEvent)
}
