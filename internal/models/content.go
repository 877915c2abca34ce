package models

import (
	"time"
)

type ContentType string

const (
	ContentTutorial ContentType = "tutorial"
	ContentQuiz     ContentType = "quiz"
	ContentMaterial ContentType = "material"
)

// Tutorial is a guided lesson, filtered by level when building a path.
type Tutorial struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Title       string           `json:"title" gorm:"not null;size:200"`
	Description *string          `json:"description" gorm:"type:text"`
	Level       ProficiencyLevel `json:"level" gorm:"not null;index;size:20"`
	Language    SignLanguage     `json:"language" gorm:"not null;index;size:10"`
	VideoURL    *string          `json:"video_url" gorm:"size:500"`

	// Reserved for future role-aware recommendations; not filtered on today.
	RecommendedForRole *UserRole `json:"recommended_for_role" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tutorial) TableName() string {
	return "tutorials"
}

// Quiz is practice content. The schema carries no level column, so quizzes
// are never filtered by proficiency when recommended.
type Quiz struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200"`
	Description *string      `json:"description" gorm:"type:text"`
	Language    SignLanguage `json:"language" gorm:"not null;index;size:10"`

	RecommendedForRole *UserRole `json:"recommended_for_role" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizAttempt records one run through a practice quiz; the last three feed
// the difficulty-adjustment recommendation.
type QuizAttempt struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;index;size:255"`
	QuizID     uint   `json:"quiz_id" gorm:"not null;index"`
	Score      int    `json:"score"`
	TotalItems int    `json:"total_items"`

	CreatedAt time.Time `json:"created_at"`

	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Percentage is the attempt's accuracy in [0,100], 0 for an empty quiz.
func (qa *QuizAttempt) Percentage() float64 {
	if qa.TotalItems == 0 {
		return 0
	}
	return float64(qa.Score) / float64(qa.TotalItems) * 100
}

// Material is reference content (documents, sign dictionaries).
type Material struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Title       string           `json:"title" gorm:"not null;size:200"`
	Description *string          `json:"description" gorm:"type:text"`
	Level       ProficiencyLevel `json:"level" gorm:"not null;index;size:20"`
	Language    SignLanguage     `json:"language" gorm:"not null;index;size:10"`
	FileURL     *string          `json:"file_url" gorm:"size:500"`

	RecommendedForRole *UserRole `json:"recommended_for_role" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "materials"
}

// LearningProgress marks a content item completed by a user.
type LearningProgress struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UserID      string      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_content;size:255"`
	ContentType ContentType `json:"content_type" gorm:"not null;uniqueIndex:idx_user_content;size:20"`
	ContentID   uint        `json:"content_id" gorm:"not null;uniqueIndex:idx_user_content"`
	CompletedAt time.Time   `json:"completed_at"`
}

func (LearningProgress) TableName() string {
	return "learning_progress"
}

// LearningPathItem is the derived, never-persisted unit of a learning path.
// Priority 1 is highest.
type LearningPathItem struct {
	ID                 uint             `json:"id"`
	Type               ContentType      `json:"type"`
	Title              string           `json:"title"`
	Description        *string          `json:"description"`
	Level              ProficiencyLevel `json:"level"`
	Language           SignLanguage     `json:"language"`
	Priority           int              `json:"priority"`
	Completed          bool             `json:"completed"`
	RecommendedForRole *UserRole        `json:"recommended_for_role,omitempty"`
	Reason             string           `json:"reason,omitempty"`
}
