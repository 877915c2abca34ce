package repositories

import (
	"context"

	"github.com/signbridge/learning-service/internal/models"
	"gorm.io/gorm"
)

// ContentRepository interface for learning-content operations
type ContentRepository interface {
	// Candidate sets for recommendations. Tutorials and materials are
	// level-filtered; quizzes have no level column and never are.
	GetTutorials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Tutorial, error)
	GetQuizzes(ctx context.Context, tx *gorm.DB, language models.SignLanguage) ([]*models.Quiz, error)
	GetMaterials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error)

	// Content management (admin surface)
	CreateTutorial(ctx context.Context, tx *gorm.DB, tutorial *models.Tutorial) error
	CreateQuiz(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	CreateMaterial(ctx context.Context, tx *gorm.DB, material *models.Material) error

	// Quiz attempts feeding difficulty adjustment
	CreateQuizAttempt(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetRecentQuizAttempts(ctx context.Context, tx *gorm.DB, userID string, quizID uint, limit int) ([]*models.QuizAttempt, error)

	// Completion marks
	MarkCompleted(ctx context.Context, tx *gorm.DB, progress *models.LearningProgress) error
	GetProgress(ctx context.Context, tx *gorm.DB, userID string) ([]*models.LearningProgress, error)
}

// UserRepository interface for user-profile operations (the service does not
// own identity; auth flows live elsewhere)
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.UserProfile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error

	// Writes the language-scoped tier, the legacy global tier, and
	// preferred_language in one update.
	UpdateProficiency(ctx context.Context, tx *gorm.DB, userID string, language models.SignLanguage, level models.ProficiencyLevel) error

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error)
}
