package services

import (
	"context"
	"errors"
	"testing"

	"github.com/signbridge/learning-service/internal/events"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

type stubScoringService struct {
	analysis *PerformanceAnalysis
	err      error
}

func (s *stubScoringService) AnalyzePerformance(ctx context.Context, attemptID uint) (*PerformanceAnalysis, error) {
	return s.analysis, s.err
}

func (s *stubScoringService) IdentifyGaps(ctx context.Context, attemptID uint) ([]KnowledgeGap, error) {
	return nil, nil
}

func (s *stubScoringService) GenerateInsights(analysis *PerformanceAnalysis, overallPct float64) []string {
	return nil
}

func (s *stubScoringService) GetResultsWithAnalysis(ctx context.Context, attemptID uint, userID string, recentQuizScore *float64) (*TestResultsResponse, error) {
	return nil, nil
}

func newLearningPathServiceForTest(t *testing.T, repo repositories.Repository, scoring ScoringService, publisher events.EventPublisher) LearningPathService {
	t.Helper()
	if scoring == nil {
		scoring = &stubScoringService{}
	}
	return NewLearningPathService(repo, nil, testLogger(t), validator.New(), scoring, publisher)
}

func TestLearningPathService_GetCurrentLearningPath(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		return &models.UserProfile{
			ID:                  id,
			Role:                models.RoleDeaf,
			ASLProficiencyLevel: levelPtr(models.LevelIntermediate),
		}, nil
	}
	repo.content.getTutorials = func(level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Tutorial, error) {
		if level != models.LevelIntermediate {
			t.Errorf("Expected tutorials fetched at %s, got %s", models.LevelIntermediate, level)
		}
		return []*models.Tutorial{
			{ID: 1, Title: "Conversational Signing", Level: level, Language: language},
		}, nil
	}
	repo.content.getQuizzes = func(language models.SignLanguage) ([]*models.Quiz, error) {
		return []*models.Quiz{{ID: 10, Title: "Vocabulary Drill", Language: language}}, nil
	}
	repo.content.getMaterials = func(level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error) {
		return []*models.Material{{ID: 20, Title: "Grammar Notes", Level: level, Language: language}}, nil
	}
	repo.content.getProgress = func(userID string) ([]*models.LearningProgress, error) {
		return []*models.LearningProgress{
			{UserID: userID, ContentType: models.ContentQuiz, ContentID: 10},
		}, nil
	}

	service := newLearningPathServiceForTest(t, repo, nil, nil)

	path, err := service.GetCurrentLearningPath(ctx, "user-1", models.LanguageASL)
	if err != nil {
		t.Fatalf("GetCurrentLearningPath failed: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("Expected 3 path items, got %d", len(path))
	}

	// Tutorial, quiz, material in priority order.
	if path[0].Type != models.ContentTutorial || path[0].Priority != 1 {
		t.Errorf("Expected tutorial first, got %+v", path[0])
	}
	if path[1].Type != models.ContentQuiz || path[1].Priority != 2 {
		t.Errorf("Expected quiz second, got %+v", path[1])
	}
	if path[2].Type != models.ContentMaterial || path[2].Priority != 3 {
		t.Errorf("Expected material third, got %+v", path[2])
	}

	// The finished quiz carries the completed flag, nothing else does.
	if !path[1].Completed {
		t.Error("Expected quiz marked completed")
	}
	if path[0].Completed || path[2].Completed {
		t.Error("Unfinished items should not be marked completed")
	}
}

func TestLearningPathService_WeaknessBoost(t *testing.T) {
	ctx := context.Background()
	completed := true

	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		return &models.UserProfile{ID: id, Role: models.RoleNonDeaf}, nil
	}
	repo.attempt.getByUser = func(userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
		if filters.Completed == nil || *filters.Completed != completed {
			t.Error("Expected query for completed attempts only")
		}
		return []*models.TestAttempt{{ID: 5, UserID: userID, TestID: 7}}, 1, nil
	}
	repo.content.getMaterials = func(level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error) {
		return []*models.Material{
			{ID: 20, Title: "Intermediate Grammar Guide", Level: level, Language: language},
			{ID: 21, Title: "History of Sign Language", Level: level, Language: language},
		}, nil
	}

	scoring := &stubScoringService{analysis: &PerformanceAnalysis{
		Weaknesses: []string{models.CategoryIntermediate},
	}}
	service := newLearningPathServiceForTest(t, repo, scoring, nil)

	path, err := service.GetCurrentLearningPath(ctx, "user-1", models.LanguageASL)
	if err != nil {
		t.Fatalf("GetCurrentLearningPath failed: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("Expected 2 path items, got %d", len(path))
	}

	// The material whose title mentions the weakness keyword jumps to the
	// top with a reason; the other keeps the material priority.
	if path[0].Title != "Intermediate Grammar Guide" || path[0].Priority != 1 {
		t.Errorf("Expected boosted material first, got %+v", path[0])
	}
	if path[0].Reason == "" {
		t.Error("Expected a reason on the boosted item")
	}
	if path[1].Priority != priorityMaterial || path[1].Reason != "" {
		t.Errorf("Expected unboosted material untouched, got %+v", path[1])
	}
}

func TestLearningPathService_AdjustDifficulty(t *testing.T) {
	ctx := context.Background()

	makeRepo := func(level models.ProficiencyLevel, attempts []*models.QuizAttempt) *mockRepository {
		repo := newMockRepository()
		repo.user.getByID = func(id string) (*models.UserProfile, error) {
			return &models.UserProfile{
				ID:                  id,
				ASLProficiencyLevel: levelPtr(level),
			}, nil
		}
		repo.content.getRecentAttempts = func(userID string, quizID uint, limit int) ([]*models.QuizAttempt, error) {
			if limit != difficultyWindow {
				t.Errorf("Expected window of %d attempts, got %d", difficultyWindow, limit)
			}
			return attempts, nil
		}
		return repo
	}

	tests := []struct {
		name         string
		level        models.ProficiencyLevel
		attempts     []*models.QuizAttempt
		wantLevel    models.ProficiencyLevel
		wantAdjusted bool
		wantAvg      float64
	}{
		{
			name:  "high average promotes",
			level: models.LevelIntermediate,
			attempts: []*models.QuizAttempt{
				{Score: 9, TotalItems: 10},
				{Score: 9, TotalItems: 10},
				{Score: 9, TotalItems: 10},
			},
			wantLevel:    models.LevelAdvanced,
			wantAdjusted: true,
			wantAvg:      90,
		},
		{
			name:  "low average demotes",
			level: models.LevelIntermediate,
			attempts: []*models.QuizAttempt{
				{Score: 4, TotalItems: 10},
				{Score: 4, TotalItems: 10},
			},
			wantLevel:    models.LevelBeginner,
			wantAdjusted: true,
			wantAvg:      40,
		},
		{
			name:  "middling average holds",
			level: models.LevelIntermediate,
			attempts: []*models.QuizAttempt{
				{Score: 7, TotalItems: 10},
			},
			wantLevel:    models.LevelIntermediate,
			wantAdjusted: false,
			wantAvg:      70,
		},
		{
			name:  "advanced never promotes past top",
			level: models.LevelAdvanced,
			attempts: []*models.QuizAttempt{
				{Score: 10, TotalItems: 10},
			},
			wantLevel:    models.LevelAdvanced,
			wantAdjusted: false,
			wantAvg:      100,
		},
		{
			name:  "beginner never demotes past bottom",
			level: models.LevelBeginner,
			attempts: []*models.QuizAttempt{
				{Score: 0, TotalItems: 10},
			},
			wantLevel:    models.LevelBeginner,
			wantAdjusted: false,
			wantAvg:      0,
		},
		{
			name:         "no attempts no adjustment",
			level:        models.LevelIntermediate,
			attempts:     nil,
			wantLevel:    models.LevelIntermediate,
			wantAdjusted: false,
			wantAvg:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := makeRepo(tt.level, tt.attempts)
			publisher := events.NewMockEventPublisher(testLogger(t))
			service := newLearningPathServiceForTest(t, repo, nil, publisher)

			result, err := service.AdjustDifficulty(ctx, "user-1", 10)
			if err != nil {
				t.Fatalf("AdjustDifficulty failed: %v", err)
			}

			if result.SuggestedLevel != tt.wantLevel {
				t.Errorf("Expected suggested level %s, got %s", tt.wantLevel, result.SuggestedLevel)
			}
			if result.Adjusted != tt.wantAdjusted {
				t.Errorf("Expected adjusted=%v, got %v", tt.wantAdjusted, result.Adjusted)
			}
			if result.AverageScore != tt.wantAvg {
				t.Errorf("Expected average %v, got %v", tt.wantAvg, result.AverageScore)
			}
			if result.AttemptsUsed != len(tt.attempts) {
				t.Errorf("Expected %d attempts used, got %d", len(tt.attempts), result.AttemptsUsed)
			}

			published := publisher.GetPublishedEvents()
			if tt.wantAdjusted {
				if len(published) != 1 || published[0].Type != events.EventDifficultyAdjusted {
					t.Errorf("Expected one %s event, got %v", events.EventDifficultyAdjusted, published)
				}
			} else if len(published) != 0 {
				t.Errorf("Expected no events without adjustment, got %v", published)
			}
		})
	}
}

func TestLearningPathService_AdjustDifficulty_UserNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newLearningPathServiceForTest(t, repo, nil, nil)

	_, err := service.AdjustDifficulty(context.Background(), "ghost", 10)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestLearningPathService_MarkCompleted(t *testing.T) {
	ctx := context.Background()

	var recorded *models.LearningProgress
	repo := newMockRepository()
	repo.content.markCompleted = func(progress *models.LearningProgress) error {
		recorded = progress
		return nil
	}

	publisher := events.NewMockEventPublisher(testLogger(t))
	service := newLearningPathServiceForTest(t, repo, nil, publisher)

	req := &MarkCompletedRequest{ContentType: models.ContentTutorial, ContentID: 3}
	if err := service.MarkCompleted(ctx, "user-1", req); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	if recorded == nil {
		t.Fatal("Expected progress recorded")
	}
	if recorded.UserID != "user-1" || recorded.ContentType != models.ContentTutorial || recorded.ContentID != 3 {
		t.Errorf("Unexpected progress row: %+v", recorded)
	}
	if recorded.CompletedAt.IsZero() {
		t.Error("Expected completion timestamp to be set")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventContentCompleted {
		t.Errorf("Expected one %s event, got %v", events.EventContentCompleted, published)
	}
}

func TestLearningPathService_MarkCompleted_InvalidType(t *testing.T) {
	repo := newMockRepository()
	service := newLearningPathServiceForTest(t, repo, nil, nil)

	req := &MarkCompletedRequest{ContentType: "podcast", ContentID: 3}
	if err := service.MarkCompleted(context.Background(), "user-1", req); err == nil {
		t.Fatal("Expected validation error for unknown content type")
	}
}

func TestLearningPathService_RecordQuizAttempt(t *testing.T) {
	repo := newMockRepository()
	service := newLearningPathServiceForTest(t, repo, nil, nil)

	attempt, err := service.RecordQuizAttempt(context.Background(), "user-1", &QuizAttemptRequest{
		QuizID:     10,
		Score:      8,
		TotalItems: 10,
	})
	if err != nil {
		t.Fatalf("RecordQuizAttempt failed: %v", err)
	}
	if attempt.UserID != "user-1" || attempt.QuizID != 10 || attempt.Score != 8 || attempt.TotalItems != 10 {
		t.Errorf("Unexpected quiz attempt: %+v", attempt)
	}
}

func TestWeaknessKeyword(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{category: models.CategoryBasic, want: "basic"},
		{category: models.CategoryIntermediate, want: "intermediate"},
		{category: models.CategoryAdvanced, want: "advanced"},
		{category: "", want: ""},
	}
	for _, tt := range tests {
		if got := weaknessKeyword(tt.category); got != tt.want {
			t.Errorf("weaknessKeyword(%q): expected %q, got %q", tt.category, tt.want, got)
		}
	}
}
