package events

import (
	"context"
	"time"
)

// Event types emitted by the learning service
const (
	EventAttemptStarted     = "attempt.started"
	EventAttemptCompleted   = "attempt.completed"
	EventProficiencyChanged = "proficiency.changed"
	EventContentCompleted   = "content.completed"
	EventDifficultyAdjusted = "difficulty.adjusted"
)

// Event is the envelope every published event is wrapped in
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

// AttemptStartedEvent is emitted when a fresh proficiency test attempt is
// created. Resuming an unfinished attempt does not re-emit it.
type AttemptStartedEvent struct {
	AttemptID uint   `json:"attempt_id"`
	TestID    uint   `json:"test_id"`
	UserID    string `json:"user_id"`
	Language  string `json:"language"`
}

// AttemptCompletedEvent is emitted when a proficiency test attempt is
// finalized with a score.
type AttemptCompletedEvent struct {
	AttemptID uint   `json:"attempt_id"`
	TestID    uint   `json:"test_id"`
	UserID    string `json:"user_id"`
	Score     int    `json:"score"`
	Level     string `json:"level"`
	Language  string `json:"language"`
}

// ProficiencyChangedEvent is emitted when a user's tier for a language
// changes, whether from a test or from quiz-driven adjustment.
type ProficiencyChangedEvent struct {
	UserID        string `json:"user_id"`
	Language      string `json:"language"`
	PreviousLevel string `json:"previous_level"`
	NewLevel      string `json:"new_level"`
	Reason        string `json:"reason"`
}

// ContentCompletedEvent is emitted when a learner finishes a learning
// path item.
type ContentCompletedEvent struct {
	UserID      string `json:"user_id"`
	ContentType string `json:"content_type"`
	ContentID   uint   `json:"content_id"`
}
