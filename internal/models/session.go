package models

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
)

type Session struct {
	ID              string        `json:"id"`
	TutorID         string        `json:"tutor_id"`
	Status          SessionStatus `json:"status"`
	ScheduledStart  time.Time     `json:"scheduled_start"`
	ReadyStudents   []string      `json:"ready_students"`
	SessionStart    *time.Time    `json:"session_start,omitempty"`
	SessionEnd      *time.Time    `json:"session_end,omitempty"`
	SessionDuration *int          `json:"session_duration,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// HasReadyStudent reports whether studentID is already in the ready set.
func (s *Session) HasReadyStudent(studentID string) bool {
	for _, id := range s.ReadyStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

type Student struct {
	ID                 string    `json:"id"`
	SubscriptionActive bool      `json:"subscription_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
