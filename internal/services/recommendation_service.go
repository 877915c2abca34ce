package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

const maxRecommendations = 20

// Content priorities: weakness-addressing tutorials rank first, practice
// quizzes second, reference materials third.
const (
	priorityTutorial = 1
	priorityQuiz     = 2
	priorityMaterial = 3
)

// roleFilter narrows content candidates for a user role. Every current
// variant passes content through unchanged; the seam exists so role-aware
// curation can land without touching the pipeline.
type roleFilter interface {
	FilterTutorials(tutorials []*models.Tutorial) []*models.Tutorial
	FilterQuizzes(quizzes []*models.Quiz) []*models.Quiz
	FilterMaterials(materials []*models.Material) []*models.Material
}

type passthroughFilter struct{}

func (passthroughFilter) FilterTutorials(t []*models.Tutorial) []*models.Tutorial { return t }
func (passthroughFilter) FilterQuizzes(q []*models.Quiz) []*models.Quiz           { return q }
func (passthroughFilter) FilterMaterials(m []*models.Material) []*models.Material { return m }

type deafLearnerFilter struct{ passthroughFilter }
type nonDeafLearnerFilter struct{ passthroughFilter }

func filterForRole(role models.UserRole) roleFilter {
	switch role {
	case models.RoleDeaf:
		return deafLearnerFilter{}
	case models.RoleNonDeaf:
		return nonDeafLearnerFilter{}
	default:
		return passthroughFilter{}
	}
}

type recommendationService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecommendationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) RecommendationService {
	return &recommendationService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// GetRecommendations builds the prioritized content list for a user after a
// test. Tutorials are only suggested when the analysis surfaced weaknesses;
// quizzes are recommended unconditionally and are never level-filtered;
// materials round out the list. The result is stably sorted by priority then
// title and capped.
func (s *recommendationService) GetRecommendations(ctx context.Context, userID string, level models.ProficiencyLevel, analysis *PerformanceAnalysis, recentQuizScore *float64) ([]LearningRecommendation, error) {
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

	// A strong or weak recent quiz run shifts the content level one tier
	// before candidates are fetched.
	contentLevel := adjustLevelForQuizScore(level, recentQuizScore)

	filter := filterForRole(profile.Role)

	tutorials, err := s.repo.Content().GetTutorials(ctx, nil, contentLevel, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get tutorials: %w", err)
	}
	quizzes, err := s.repo.Content().GetQuizzes(ctx, nil, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	materials, err := s.repo.Content().GetMaterials(ctx, nil, contentLevel, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get materials: %w", err)
	}

	tutorials = filter.FilterTutorials(tutorials)
	quizzes = filter.FilterQuizzes(quizzes)
	materials = filter.FilterMaterials(materials)

	var recommendations []LearningRecommendation

	if analysis != nil && len(analysis.Weaknesses) > 0 {
		for _, tutorial := range tutorials {
			recommendations = append(recommendations, LearningRecommendation{
				ContentType: models.ContentTutorial,
				ContentID:   tutorial.ID,
				Title:       tutorial.Title,
				Description: tutorial.Description,
				Priority:    priorityTutorial,
				Reason:      fmt.Sprintf("Strengthen %s", analysis.Weaknesses[0]),
			})
		}
	}

	for _, quiz := range quizzes {
		recommendations = append(recommendations, LearningRecommendation{
			ContentType: models.ContentQuiz,
			ContentID:   quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			Priority:    priorityQuiz,
			Reason:      "Practice to reinforce what you learned",
		})
	}

	for _, material := range materials {
		recommendations = append(recommendations, LearningRecommendation{
			ContentType: models.ContentMaterial,
			ContentID:   material.ID,
			Title:       material.Title,
			Description: material.Description,
			Priority:    priorityMaterial,
			Reason:      "Reference material for your level",
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Priority != recommendations[j].Priority {
			return recommendations[i].Priority < recommendations[j].Priority
		}
		return recommendations[i].Title < recommendations[j].Title
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return recommendations, nil
}

// adjustLevelForQuizScore shifts the content level one tier based on a
// recent quiz percentage: promote at 85 and above, demote below 50,
// clamped at the outer tiers.
func adjustLevelForQuizScore(level models.ProficiencyLevel, recentQuizScore *float64) models.ProficiencyLevel {
	if recentQuizScore == nil {
		return level
	}
	switch {
	case *recentQuizScore >= 85:
		return models.PromoteLevel(level)
	case *recentQuizScore < 50:
		return models.DemoteLevel(level)
	default:
		return level
	}
}
