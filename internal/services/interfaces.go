package services

import (
	"context"
	"time"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

// Request DTOs live in the validator package so struct rules and handlers
// share one definition.
type (
	StartAttemptRequest   = validator.StartAttemptRequest
	SubmitAnswerRequest   = validator.SubmitAnswerRequest
	TestCreateRequest     = validator.TestCreateRequest
	TestUpdateRequest     = validator.TestUpdateRequest
	QuestionCreateRequest = validator.QuestionCreateRequest
	ChoiceCreateRequest   = validator.ChoiceCreateRequest
	TutorialCreateRequest = validator.TutorialCreateRequest
	QuizCreateRequest     = validator.QuizCreateRequest
	MaterialCreateRequest = validator.MaterialCreateRequest
	QuizAttemptRequest    = validator.QuizAttemptRequest
	MarkCompletedRequest  = validator.MarkCompletedRequest
	ProfileUpdateRequest  = validator.ProfileUpdateRequest
)

// ===== ATTEMPT DTOs =====

// AttemptResponse is the attempt as returned to the owner
type AttemptResponse struct {
	ID          uint           `json:"id"`
	TestID      uint           `json:"test_id"`
	UserID      string         `json:"user_id"`
	Score       *int           `json:"score"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	Resumed     bool           `json:"resumed"`
	Test        *models.Test   `json:"test,omitempty"`
	Answers     []models.Answer `json:"answers,omitempty"`
}

// SubmitAnswerResponse echoes the recorded answer
type SubmitAnswerResponse struct {
	AttemptID  uint `json:"attempt_id"`
	QuestionID uint `json:"question_id"`
	ChoiceID   uint `json:"choice_id"`
	IsCorrect  bool `json:"is_correct"`
}

// FinalizeResponse is the outcome of finalizing an attempt
type FinalizeResponse struct {
	AttemptID        uint                    `json:"attempt_id"`
	Score            int                     `json:"score"`
	TotalQuestions   int                     `json:"total_questions"`
	CorrectAnswers   int                     `json:"correct_answers"`
	ProficiencyLevel models.ProficiencyLevel `json:"proficiency_level"`
	Language         models.SignLanguage     `json:"language"`
	CompletedAt      time.Time               `json:"completed_at"`
}

// ===== SCORING DTOs =====

// CategoryPerformance is one fixed category bucket of an attempt
type CategoryPerformance struct {
	Category   string  `json:"category"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// PerformanceAnalysis is the category breakdown plus derived strengths
// and weaknesses
type PerformanceAnalysis struct {
	Categories []CategoryPerformance `json:"categories"`
	Strengths  []string              `json:"strengths"`
	Weaknesses []string              `json:"weaknesses"`
}

// KnowledgeGap is one incorrectly answered question with the expected answer
type KnowledgeGap struct {
	QuestionID     uint   `json:"question_id"`
	QuestionText   string `json:"question_text"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	Category       string `json:"category"`
}

// TestResultsResponse aggregates everything shown on the results screen
type TestResultsResponse struct {
	AttemptID       uint                     `json:"attempt_id"`
	Score           int                      `json:"score"`
	Level           models.ProficiencyLevel  `json:"level"`
	Analysis        *PerformanceAnalysis     `json:"analysis"`
	Gaps            []KnowledgeGap           `json:"gaps"`
	Insights        []string                 `json:"insights"`
	Recommendations []LearningRecommendation `json:"recommendations"`
}

// ===== RECOMMENDATION DTOs =====

// LearningRecommendation is one suggested content item, ordered by priority
type LearningRecommendation struct {
	ContentType models.ContentType `json:"content_type"`
	ContentID   uint               `json:"content_id"`
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	Priority    int                `json:"priority"`
	Reason      string             `json:"reason,omitempty"`
}

// DifficultyAdjustment is the outcome of quiz-driven level adjustment
type DifficultyAdjustment struct {
	UserID        string                  `json:"user_id"`
	QuizID        uint                    `json:"quiz_id"`
	CurrentLevel  models.ProficiencyLevel `json:"current_level"`
	SuggestedLevel models.ProficiencyLevel `json:"suggested_level"`
	AverageScore  float64                 `json:"average_score"`
	AttemptsUsed  int                     `json:"attempts_used"`
	Adjusted      bool                    `json:"adjusted"`
}

// ===== TEST ADMIN DTOs =====

// TestResponse is a test with its aggregate stats for admins
type TestResponse struct {
	Test  *models.Test           `json:"test"`
	Stats *repositories.TestStats `json:"stats,omitempty"`
}

// TestListResponse is a paginated test listing
type TestListResponse struct {
	Tests  []*models.Test `json:"tests"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ImportResult summarizes an Excel test import
type ImportResult struct {
	TestID        uint     `json:"test_id"`
	QuestionCount int      `json:"question_count"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ===== SERVICE INTERFACES =====

// AttemptService drives the proficiency test attempt lifecycle
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error)
	SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, userID string) (*SubmitAnswerResponse, error)
	Finalize(ctx context.Context, attemptID uint, userID string) (*FinalizeResponse, error)
	GetByID(ctx context.Context, attemptID uint, userID string) (*AttemptResponse, error)
	ListByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error)
}

// ScoringService turns a finished attempt into analysis, gaps and insights
type ScoringService interface {
	AnalyzePerformance(ctx context.Context, attemptID uint) (*PerformanceAnalysis, error)
	IdentifyGaps(ctx context.Context, attemptID uint) ([]KnowledgeGap, error)
	GenerateInsights(analysis *PerformanceAnalysis, overallPct float64) []string
	GetResultsWithAnalysis(ctx context.Context, attemptID uint, userID string, recentQuizScore *float64) (*TestResultsResponse, error)
}

// RecommendationService proposes content from an attempt analysis
type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID string, level models.ProficiencyLevel, analysis *PerformanceAnalysis, recentQuizScore *float64) ([]LearningRecommendation, error)
}

// LearningPathService builds the adaptive path and adjusts difficulty
type LearningPathService interface {
	GetCurrentLearningPath(ctx context.Context, userID string, language models.SignLanguage) ([]models.LearningPathItem, error)
	AdjustDifficulty(ctx context.Context, userID string, quizID uint) (*DifficultyAdjustment, error)
	MarkCompleted(ctx context.Context, userID string, req *MarkCompletedRequest) error
	RecordQuizAttempt(ctx context.Context, userID string, req *QuizAttemptRequest) (*models.QuizAttempt, error)
}

// TestService is the content-admin surface for proficiency tests
type TestService interface {
	Create(ctx context.Context, req *TestCreateRequest, creatorID string) (*models.Test, error)
	Update(ctx context.Context, testID uint, req *TestUpdateRequest, userID string) (*models.Test, error)
	Delete(ctx context.Context, testID uint, userID string) error
	GetByID(ctx context.Context, testID uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, testID uint) (*models.Test, error)
	List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error)
	GetStats(ctx context.Context, testID uint, userID string) (*repositories.TestStats, error)
	ImportFromExcel(ctx context.Context, data []byte, creatorID string) (*ImportResult, error)
	ExportResults(ctx context.Context, testID uint, userID string) ([]byte, error)
	CreateTutorial(ctx context.Context, req *TutorialCreateRequest, userID string) (*models.Tutorial, error)
	CreateQuiz(ctx context.Context, req *QuizCreateRequest, userID string) (*models.Quiz, error)
	CreateMaterial(ctx context.Context, req *MaterialCreateRequest, userID string) (*models.Material, error)
}

// UserService exposes profile reads, updates and attempt statistics
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.UserProfile, error)
	GetStats(ctx context.Context, userID string) (*repositories.UserAttemptStats, error)
}

// ServiceManager wires and owns all service instances
type ServiceManager interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error

	Attempt() AttemptService
	Scoring() ScoringService
	Recommendation() RecommendationService
	LearningPath() LearningPathService
	Test() TestService
	User() UserService
}
