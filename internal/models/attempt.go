package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestAttempt is one user's run through a proficiency test. Score is nil
// until the attempt is finalized; CompletedAt doubles as the completion
// flag, so an attempt with CompletedAt == nil is resumable.
type TestAttempt struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;index;size:255"`
	TestID uint   `json:"test_id" gorm:"not null;index"`

	Score       *int       `json:"score"` // 0-100, defined only after completion
	CompletedAt *time.Time `json:"completed_at"`

	// Browser info, screen resolution and similar capture context.
	SessionData datatypes.JSON `json:"session_data,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    UserProfile `json:"-" gorm:"foreignKey:UserID"`
	Test    Test        `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Answers []Answer    `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// IsCompleted reports whether the attempt has been finalized.
func (a *TestAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Answer records the user's selected choice for one question. Rows are
// upserted keyed on (attempt_id, question_id), so resubmitting a question
// replaces the prior answer and submission stays idempotent under retries.
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	ChoiceID   uint `json:"choice_id" gorm:"not null"`

	IsCorrect bool `json:"is_correct" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attempt  TestAttempt `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question    `json:"-" gorm:"foreignKey:QuestionID"`
	Choice   Choice      `json:"-" gorm:"foreignKey:ChoiceID"`
}

func (Answer) TableName() string {
	return "answers"
}
