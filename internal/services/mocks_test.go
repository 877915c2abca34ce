package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

// Hand-written mocks with overridable function fields. Methods without an
// override return the repository not-found sentinel or empty results.

type mockTestRepo struct {
	create           func(test *models.Test) error
	getByID          func(id uint) (*models.Test, error)
	getByIDDetails   func(id uint) (*models.Test, error)
	update           func(test *models.Test) error
	delete           func(id uint) error
	list             func(filters repositories.TestFilters) ([]*models.Test, int64, error)
	getQuestions     func(testID uint) ([]*models.Question, error)
	countQuestions   func(testID uint) (int64, error)
	getCorrectChoice func(questionID uint) (*models.Choice, error)
	getChoice        func(choiceID uint) (*models.Choice, error)
	getStats         func(testID uint) (*repositories.TestStats, error)
}

func (m *mockTestRepo) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	if m.create != nil {
		return m.create(test)
	}
	return nil
}

func (m *mockTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	if m.getByID != nil {
		return m.getByID(id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockTestRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	if m.getByIDDetails != nil {
		return m.getByIDDetails(id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockTestRepo) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	if m.update != nil {
		return m.update(test)
	}
	return nil
}

func (m *mockTestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.delete != nil {
		return m.delete(id)
	}
	return nil
}

func (m *mockTestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	if m.list != nil {
		return m.list(filters)
	}
	return nil, 0, nil
}

func (m *mockTestRepo) GetQuestions(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error) {
	if m.getQuestions != nil {
		return m.getQuestions(testID)
	}
	return nil, nil
}

func (m *mockTestRepo) CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	if m.countQuestions != nil {
		return m.countQuestions(testID)
	}
	return 0, nil
}

func (m *mockTestRepo) GetCorrectChoice(ctx context.Context, tx *gorm.DB, questionID uint) (*models.Choice, error) {
	if m.getCorrectChoice != nil {
		return m.getCorrectChoice(questionID)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockTestRepo) GetChoice(ctx context.Context, tx *gorm.DB, choiceID uint) (*models.Choice, error) {
	if m.getChoice != nil {
		return m.getChoice(choiceID)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockTestRepo) GetStats(ctx context.Context, tx *gorm.DB, testID uint) (*repositories.TestStats, error) {
	if m.getStats != nil {
		return m.getStats(testID)
	}
	return &repositories.TestStats{}, nil
}

type mockAttemptRepo struct {
	create         func(attempt *models.TestAttempt) error
	getByID        func(id uint) (*models.TestAttempt, error)
	getByIDDetails func(id uint) (*models.TestAttempt, error)
	update         func(attempt *models.TestAttempt) error
	delete         func(id uint) error
	getIncomplete  func(userID string, testID uint) (*models.TestAttempt, error)
	list           func(filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error)
	getByUser      func(userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error)
	getUserStats   func(userID string) (*repositories.UserAttemptStats, error)
}

func (m *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	if m.create != nil {
		return m.create(attempt)
	}
	attempt.ID = 1
	return nil
}

func (m *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	if m.getByID != nil {
		return m.getByID(id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAttemptRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	if m.getByIDDetails != nil {
		return m.getByIDDetails(id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAttemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	if m.update != nil {
		return m.update(attempt)
	}
	return nil
}

func (m *mockAttemptRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.delete != nil {
		return m.delete(id)
	}
	return nil
}

func (m *mockAttemptRepo) GetIncompleteAttempt(ctx context.Context, tx *gorm.DB, userID string, testID uint) (*models.TestAttempt, error) {
	if m.getIncomplete != nil {
		return m.getIncomplete(userID, testID)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAttemptRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	if m.list != nil {
		return m.list(filters)
	}
	return nil, 0, nil
}

func (m *mockAttemptRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	if m.getByUser != nil {
		return m.getByUser(userID, filters)
	}
	return nil, 0, nil
}

func (m *mockAttemptRepo) GetUserStats(ctx context.Context, tx *gorm.DB, userID string) (*repositories.UserAttemptStats, error) {
	if m.getUserStats != nil {
		return m.getUserStats(userID)
	}
	return &repositories.UserAttemptStats{}, nil
}

type mockAnswerRepo struct {
	upsert       func(answer *models.Answer) error
	getByAttempt func(attemptID uint) ([]*models.Answer, error)
	getIncorrect func(attemptID uint) ([]*models.Answer, error)
	countCorrect func(attemptID uint) (int64, error)
}

func (m *mockAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if m.upsert != nil {
		return m.upsert(answer)
	}
	return nil
}

func (m *mockAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	if m.getByAttempt != nil {
		return m.getByAttempt(attemptID)
	}
	return nil, nil
}

func (m *mockAnswerRepo) GetIncorrectByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	if m.getIncorrect != nil {
		return m.getIncorrect(attemptID)
	}
	return nil, nil
}

func (m *mockAnswerRepo) CountCorrect(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error) {
	if m.countCorrect != nil {
		return m.countCorrect(attemptID)
	}
	return 0, nil
}

type mockContentRepo struct {
	getTutorials      func(level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Tutorial, error)
	getQuizzes        func(language models.SignLanguage) ([]*models.Quiz, error)
	getMaterials      func(level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error)
	createTutorial    func(tutorial *models.Tutorial) error
	createQuiz        func(quiz *models.Quiz) error
	createMaterial    func(material *models.Material) error
	createQuizAttempt func(attempt *models.QuizAttempt) error
	getRecentAttempts func(userID string, quizID uint, limit int) ([]*models.QuizAttempt, error)
	markCompleted     func(progress *models.LearningProgress) error
	getProgress       func(userID string) ([]*models.LearningProgress, error)
}

func (m *mockContentRepo) GetTutorials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Tutorial, error) {
	if m.getTutorials != nil {
		return m.getTutorials(level, language)
	}
	return nil, nil
}

func (m *mockContentRepo) GetQuizzes(ctx context.Context, tx *gorm.DB, language models.SignLanguage) ([]*models.Quiz, error) {
	if m.getQuizzes != nil {
		return m.getQuizzes(language)
	}
	return nil, nil
}

func (m *mockContentRepo) GetMaterials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error) {
	if m.getMaterials != nil {
		return m.getMaterials(level, language)
	}
	return nil, nil
}

func (m *mockContentRepo) CreateTutorial(ctx context.Context, tx *gorm.DB, tutorial *models.Tutorial) error {
	if m.createTutorial != nil {
		return m.createTutorial(tutorial)
	}
	return nil
}

func (m *mockContentRepo) CreateQuiz(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if m.createQuiz != nil {
		return m.createQuiz(quiz)
	}
	return nil
}

func (m *mockContentRepo) CreateMaterial(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	if m.createMaterial != nil {
		return m.createMaterial(material)
	}
	return nil
}

func (m *mockContentRepo) CreateQuizAttempt(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	if m.createQuizAttempt != nil {
		return m.createQuizAttempt(attempt)
	}
	attempt.ID = 1
	return nil
}

func (m *mockContentRepo) GetRecentQuizAttempts(ctx context.Context, tx *gorm.DB, userID string, quizID uint, limit int) ([]*models.QuizAttempt, error) {
	if m.getRecentAttempts != nil {
		return m.getRecentAttempts(userID, quizID, limit)
	}
	return nil, nil
}

func (m *mockContentRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, progress *models.LearningProgress) error {
	if m.markCompleted != nil {
		return m.markCompleted(progress)
	}
	return nil
}

func (m *mockContentRepo) GetProgress(ctx context.Context, tx *gorm.DB, userID string) ([]*models.LearningProgress, error) {
	if m.getProgress != nil {
		return m.getProgress(userID)
	}
	return nil, nil
}

type mockUserRepo struct {
	getByID           func(id string) (*models.UserProfile, error)
	update            func(profile *models.UserProfile) error
	updateProficiency func(userID string, language models.SignLanguage, level models.ProficiencyLevel) error
	existsByID        func(id string) (bool, error)
	hasRole           func(id string, role models.UserRole) (bool, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.UserProfile, error) {
	if m.getByID != nil {
		return m.getByID(id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	if m.update != nil {
		return m.update(profile)
	}
	return nil
}

func (m *mockUserRepo) UpdateProficiency(ctx context.Context, tx *gorm.DB, userID string, language models.SignLanguage, level models.ProficiencyLevel) error {
	if m.updateProficiency != nil {
		return m.updateProficiency(userID, language, level)
	}
	return nil
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	if m.existsByID != nil {
		return m.existsByID(id)
	}
	return false, nil
}

func (m *mockUserRepo) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error) {
	if m.hasRole != nil {
		return m.hasRole(id, role)
	}
	return false, nil
}

// mockRepository aggregates the sub-repo mocks. WithTransaction just runs the
// callback against the same repository since the mocks keep no real state.
type mockRepository struct {
	test    *mockTestRepo
	attempt *mockAttemptRepo
	answer  *mockAnswerRepo
	content *mockContentRepo
	user    *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		test:    &mockTestRepo{},
		attempt: &mockAttemptRepo{},
		answer:  &mockAnswerRepo{},
		content: &mockContentRepo{},
		user:    &mockUserRepo{},
	}
}

func (m *mockRepository) Test() repositories.TestRepository       { return m.test }
func (m *mockRepository) Attempt() repositories.AttemptRepository { return m.attempt }
func (m *mockRepository) Answer() repositories.AnswerRepository   { return m.answer }
func (m *mockRepository) Content() repositories.ContentRepository { return m.content }
func (m *mockRepository) User() repositories.UserRepository       { return m.user }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
