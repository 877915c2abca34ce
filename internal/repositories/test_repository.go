package repositories

import (
	"context"

	"github.com/signbridge/learning-service/internal/models"
	"gorm.io/gorm"
)

// TestRepository interface for proficiency-test operations
type TestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) // Include questions and choices
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.Test, int64, error)

	// Question access
	GetQuestions(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error)
	CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
	GetCorrectChoice(ctx context.Context, tx *gorm.DB, questionID uint) (*models.Choice, error)
	GetChoice(ctx context.Context, tx *gorm.DB, choiceID uint) (*models.Choice, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB, testID uint) (*TestStats, error)
}

// AttemptRepository interface for test-attempt operations
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) // Include test and answers
	Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Resume semantics: most recent attempt with completed_at IS NULL
	GetIncompleteAttempt(ctx context.Context, tx *gorm.DB, userID string, testID uint) (*models.TestAttempt, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters AttemptFilters) ([]*models.TestAttempt, int64, error)

	// Statistics
	GetUserStats(ctx context.Context, tx *gorm.DB, userID string) (*UserAttemptStats, error)
}

// AnswerRepository interface for per-question answer operations
type AnswerRepository interface {
	// Upsert keyed on (attempt_id, question_id): resubmission replaces
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error

	// Query operations
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error)          // Question preloaded
	GetIncorrectByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) // Question and Choice preloaded
	CountCorrect(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error)
}
