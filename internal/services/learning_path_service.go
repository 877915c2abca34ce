package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/events"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

// Quiz attempts considered when deciding whether to shift a user's level
const difficultyWindow = 3

type learningPathService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	scoring   ScoringService
	publisher events.EventPublisher
}

func NewLearningPathService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, scoring ScoringService, publisher events.EventPublisher) LearningPathService {
	return &learningPathService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		scoring:   scoring,
		publisher: publisher,
	}
}

// GetCurrentLearningPath derives the user's path from their stored tier for
// the language. The path is regenerated on every call; nothing is persisted
// and there is no staleness to manage. Content whose title or description
// mentions a current weakness is boosted to the top with a reason attached.
func (s *learningPathService) GetCurrentLearningPath(ctx context.Context, userID string, language models.SignLanguage) ([]models.LearningPathItem, error) {
	profile, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	level := profile.LevelFor(language)
	filter := filterForRole(profile.Role)

	tutorials, err := s.repo.Content().GetTutorials(ctx, nil, level, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get tutorials: %w", err)
	}
	quizzes, err := s.repo.Content().GetQuizzes(ctx, nil, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	materials, err := s.repo.Content().GetMaterials(ctx, nil, level, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get materials: %w", err)
	}

	tutorials = filter.FilterTutorials(tutorials)
	quizzes = filter.FilterQuizzes(quizzes)
	materials = filter.FilterMaterials(materials)

	weaknesses := s.currentWeaknesses(ctx, userID)
	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var path []models.LearningPathItem

	for _, tutorial := range tutorials {
		item := models.LearningPathItem{
			ID:                 tutorial.ID,
			Type:               models.ContentTutorial,
			Title:              tutorial.Title,
			Description:        tutorial.Description,
			Level:              tutorial.Level,
			Language:           tutorial.Language,
			Priority:           priorityTutorial,
			Completed:          completed[progressKey(models.ContentTutorial, tutorial.ID)],
			RecommendedForRole: tutorial.RecommendedForRole,
		}
		applyWeaknessBoost(&item, weaknesses)
		path = append(path, item)
	}

	for _, quiz := range quizzes {
		item := models.LearningPathItem{
			ID:                 quiz.ID,
			Type:               models.ContentQuiz,
			Title:              quiz.Title,
			Description:        quiz.Description,
			Level:              level,
			Language:           quiz.Language,
			Priority:           priorityQuiz,
			Completed:          completed[progressKey(models.ContentQuiz, quiz.ID)],
			RecommendedForRole: quiz.RecommendedForRole,
		}
		applyWeaknessBoost(&item, weaknesses)
		path = append(path, item)
	}

	for _, material := range materials {
		item := models.LearningPathItem{
			ID:                 material.ID,
			Type:               models.ContentMaterial,
			Title:              material.Title,
			Description:        material.Description,
			Level:              material.Level,
			Language:           material.Language,
			Priority:           priorityMaterial,
			Completed:          completed[progressKey(models.ContentMaterial, material.ID)],
			RecommendedForRole: material.RecommendedForRole,
		}
		applyWeaknessBoost(&item, weaknesses)
		path = append(path, item)
	}

	sort.SliceStable(path, func(i, j int) bool {
		if path[i].Priority != path[j].Priority {
			return path[i].Priority < path[j].Priority
		}
		return path[i].Title < path[j].Title
	})

	return path, nil
}

// AdjustDifficulty averages the user's last attempts of a quiz and suggests
// a one-tier shift: promote at 85 and above, demote below 50, clamped at
// the outer tiers. It only recommends; the profile is updated separately
// when the suggestion is applied.
func (s *learningPathService) AdjustDifficulty(ctx context.Context, userID string, quizID uint) (*DifficultyAdjustment, error) {
	profile, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	language := models.LanguageASL
	if profile.PreferredLanguage != nil {
		language = *profile.PreferredLanguage
	}
	current := profile.LevelFor(language)

	attempts, err := s.repo.Content().GetRecentQuizAttempts(ctx, nil, userID, quizID, difficultyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz attempts: %w", err)
	}

	result := &DifficultyAdjustment{
		UserID:         userID,
		QuizID:         quizID,
		CurrentLevel:   current,
		SuggestedLevel: current,
		AttemptsUsed:   len(attempts),
	}
	if len(attempts) == 0 {
		return result, nil
	}

	var sum float64
	for _, attempt := range attempts {
		sum += attempt.Percentage()
	}
	avg := sum / float64(len(attempts))
	result.AverageScore = avg

	switch {
	case avg >= 85:
		result.SuggestedLevel = models.PromoteLevel(current)
	case avg < 50:
		result.SuggestedLevel = models.DemoteLevel(current)
	}
	result.Adjusted = result.SuggestedLevel != current

	if result.Adjusted && s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.EventDifficultyAdjusted, events.ProficiencyChangedEvent{
			UserID:        userID,
			Language:      string(language),
			PreviousLevel: string(current),
			NewLevel:      string(result.SuggestedLevel),
			Reason:        "quiz_performance",
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish difficulty.adjusted", "error", err)
		}
	}

	return result, nil
}

// MarkCompleted records that the user finished a content item. Repeat calls
// update the completion timestamp rather than erroring.
func (s *learningPathService) MarkCompleted(ctx context.Context, userID string, req *MarkCompletedRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	progress := &models.LearningProgress{
		UserID:      userID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.repo.Content().MarkCompleted(ctx, nil, progress); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.EventContentCompleted, events.ContentCompletedEvent{
			UserID:      userID,
			ContentType: string(req.ContentType),
			ContentID:   req.ContentID,
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish content.completed", "error", err)
		}
	}

	return nil
}

// RecordQuizAttempt persists a finished quiz run for later difficulty
// adjustment.
func (s *learningPathService) RecordQuizAttempt(ctx context.Context, userID string, req *QuizAttemptRequest) (*models.QuizAttempt, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt := &models.QuizAttempt{
		UserID:     userID,
		QuizID:     req.QuizID,
		Score:      req.Score,
		TotalItems: req.TotalItems,
	}
	if err := s.repo.Content().CreateQuizAttempt(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to record quiz attempt: %w", err)
	}
	return attempt, nil
}

// ===== HELPERS =====

// currentWeaknesses pulls the weakness categories from the user's most
// recent completed attempt. Having no attempt history is not an error, just
// an unboosted path.
func (s *learningPathService) currentWeaknesses(ctx context.Context, userID string) []string {
	completed := true
	attempts, _, err := s.repo.Attempt().GetByUser(ctx, nil, userID, repositories.AttemptFilters{
		Completed: &completed,
		Limit:     1,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil || len(attempts) == 0 {
		return nil
	}

	analysis, err := s.scoring.AnalyzePerformance(ctx, attempts[0].ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to analyze latest attempt for path boost",
			"attempt_id", attempts[0].ID,
			"error", err)
		return nil
	}
	return analysis.Weaknesses
}

func (s *learningPathService) completedSet(ctx context.Context, userID string) (map[string]bool, error) {
	progress, err := s.repo.Content().GetProgress(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	set := make(map[string]bool, len(progress))
	for _, p := range progress {
		set[progressKey(p.ContentType, p.ContentID)] = true
	}
	return set, nil
}

func progressKey(contentType models.ContentType, contentID uint) string {
	return fmt.Sprintf("%s:%d", contentType, contentID)
}

// applyWeaknessBoost promotes an item to top priority when its title or
// description mentions one of the user's weakness categories.
func applyWeaknessBoost(item *models.LearningPathItem, weaknesses []string) {
	for _, weakness := range weaknesses {
		keyword := weaknessKeyword(weakness)
		if keyword == "" {
			continue
		}
		haystack := strings.ToLower(item.Title)
		if item.Description != nil {
			haystack += " " + strings.ToLower(*item.Description)
		}
		if strings.Contains(haystack, keyword) {
			item.Priority = 1
			item.Reason = fmt.Sprintf("Recommended to strengthen %s", weakness)
			return
		}
	}
}

// weaknessKeyword maps a category name to the keyword searched for in
// content titles ("Basic Concepts" -> "basic").
func weaknessKeyword(category string) string {
	fields := strings.Fields(strings.ToLower(category))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
