package validator

import (
	"github.com/signbridge/learning-service/internal/models"
)

// StartAttemptRequest begins (or resumes) a proficiency test attempt
type StartAttemptRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

// SubmitAnswerRequest records one answer inside an attempt
type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`
	ChoiceID   uint `json:"choice_id" validate:"required"`
}

// TestCreateRequest creates a proficiency test with its question tree
type TestCreateRequest struct {
	Title       string                  `json:"title" validate:"required,test_title"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Language    models.SignLanguage     `json:"language" validate:"required,sign_language"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// TestUpdateRequest updates test metadata
type TestUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,test_title"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// QuestionCreateRequest adds a question to a test. OrderIndex drives the
// category bucket the question is scored under.
type QuestionCreateRequest struct {
	Text       string                `json:"text" validate:"required,min=1,max=2000"`
	OrderIndex int                   `json:"order_index" validate:"min=0"`
	Choices    []ChoiceCreateRequest `json:"choices" validate:"required,min=2,dive"`
}

// ChoiceCreateRequest is one answer option for a question
type ChoiceCreateRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// TutorialCreateRequest creates a tutorial
type TutorialCreateRequest struct {
	Title       string                  `json:"title" validate:"required,test_title"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Level       models.ProficiencyLevel `json:"level" validate:"required,proficiency_level"`
	Language    models.SignLanguage     `json:"language" validate:"required,sign_language"`
	VideoURL    *string                 `json:"video_url" validate:"omitempty,url,max=500"`
}

// QuizCreateRequest creates a practice quiz
type QuizCreateRequest struct {
	Title       string              `json:"title" validate:"required,test_title"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	Language    models.SignLanguage `json:"language" validate:"required,sign_language"`
}

// MaterialCreateRequest creates reference material
type MaterialCreateRequest struct {
	Title       string                  `json:"title" validate:"required,test_title"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Level       models.ProficiencyLevel `json:"level" validate:"required,proficiency_level"`
	Language    models.SignLanguage     `json:"language" validate:"required,sign_language"`
	FileURL     *string                 `json:"file_url" validate:"omitempty,url,max=500"`
}

// QuizAttemptRequest records a finished quiz run
type QuizAttemptRequest struct {
	QuizID     uint `json:"quiz_id" validate:"required"`
	Score      int  `json:"score" validate:"min=0"`
	TotalItems int  `json:"total_items" validate:"required,min=1"`
}

// MarkCompletedRequest marks a learning path item as completed
type MarkCompletedRequest struct {
	ContentType models.ContentType `json:"content_type" validate:"required,content_type"`
	ContentID   uint               `json:"content_id" validate:"required"`
}

// ProfileUpdateRequest updates mutable profile fields
type ProfileUpdateRequest struct {
	FullName          *string              `json:"full_name" validate:"omitempty,min=1,max=100"`
	PreferredLanguage *models.SignLanguage `json:"preferred_language" validate:"omitempty,sign_language"`
	AvatarURL         *string              `json:"avatar_url" validate:"omitempty,url,max=500"`
}
