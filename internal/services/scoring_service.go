package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

type scoringService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	recommendation RecommendationService
}

func NewScoringService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, recommendation RecommendationService) ScoringService {
	return &scoringService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		recommendation: recommendation,
	}
}

// AnalyzePerformance buckets the attempt's answers into the three fixed
// categories by question order index and derives strengths and weaknesses.
// Categories with no questions report 0%, and only categories that actually
// contain questions can qualify as a strength or weakness.
func (s *scoringService) AnalyzePerformance(ctx context.Context, attemptID uint) (*PerformanceAnalysis, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	questions, err := s.repo.Test().GetQuestions(ctx, nil, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	correctByQuestion := make(map[uint]bool, len(answers))
	for _, answer := range answers {
		correctByQuestion[answer.QuestionID] = answer.IsCorrect
	}

	type bucket struct {
		correct int
		total   int
	}
	buckets := make(map[string]*bucket, 3)
	for _, name := range models.CategoryNames() {
		buckets[name] = &bucket{}
	}

	for _, question := range questions {
		category := models.CategoryForOrderIndex(question.OrderIndex)
		buckets[category].total++
		// Unanswered questions stay wrong
		if correctByQuestion[question.ID] {
			buckets[category].correct++
		}
	}

	analysis := &PerformanceAnalysis{}
	for _, name := range models.CategoryNames() {
		b := buckets[name]
		pct := 0.0
		if b.total > 0 {
			pct = math.Round(float64(b.correct) / float64(b.total) * 100)
		}
		analysis.Categories = append(analysis.Categories, CategoryPerformance{
			Category:   name,
			Correct:    b.correct,
			Total:      b.total,
			Percentage: pct,
		})

		if b.total == 0 {
			continue
		}
		if pct >= 70 {
			analysis.Strengths = append(analysis.Strengths, name)
		} else if pct < 50 {
			analysis.Weaknesses = append(analysis.Weaknesses, name)
		}
	}

	return analysis, nil
}

// IdentifyGaps lists each incorrectly answered question with the answer the
// user picked and the expected one. Correct-choice lookups are independent
// reads, so they are fanned out concurrently. A question whose correct
// choice is missing from the data reports "Unknown" rather than failing the
// whole report.
func (s *scoringService) IdentifyGaps(ctx context.Context, attemptID uint) ([]KnowledgeGap, error) {
	incorrect, err := s.repo.Answer().GetIncorrectByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get incorrect answers: %w", err)
	}
	if len(incorrect) == 0 {
		return []KnowledgeGap{}, nil
	}

	gaps := make([]KnowledgeGap, len(incorrect))
	var wg sync.WaitGroup
	for i, answer := range incorrect {
		gaps[i] = KnowledgeGap{
			QuestionID:     answer.QuestionID,
			QuestionText:   answer.Question.Text,
			SelectedAnswer: answer.Choice.Text,
			CorrectAnswer:  "Unknown",
			Category:       models.CategoryForOrderIndex(answer.Question.OrderIndex),
		}

		wg.Add(1)
		go func(i int, questionID uint) {
			defer wg.Done()
			choice, err := s.repo.Test().GetCorrectChoice(ctx, nil, questionID)
			if err != nil {
				s.logger.WarnContext(ctx, "No correct choice found for question",
					"question_id", questionID,
					"error", err)
				return
			}
			gaps[i].CorrectAnswer = choice.Text
		}(i, answer.QuestionID)
	}
	wg.Wait()

	return gaps, nil
}

// GenerateInsights is pure: the same analysis always produces the same
// sentences, in category order.
func (s *scoringService) GenerateInsights(analysis *PerformanceAnalysis, overallPct float64) []string {
	insights := make([]string, 0, len(analysis.Categories)+2)

	switch {
	case overallPct >= 80:
		insights = append(insights, "Excellent overall performance! You have a strong grasp of sign language fundamentals.")
	case overallPct >= 60:
		insights = append(insights, "Good overall performance with room to grow in some areas.")
	default:
		insights = append(insights, "Keep practicing! Focused review of the basics will build a stronger foundation.")
	}

	for _, category := range analysis.Categories {
		if category.Total == 0 {
			continue
		}
		if category.Percentage >= 80 {
			insights = append(insights, fmt.Sprintf("You show strong mastery of %s (%.0f%%).", category.Category, category.Percentage))
		} else if category.Percentage < 50 {
			insights = append(insights, fmt.Sprintf("%s needs attention (%.0f%%); targeted practice will help.", category.Category, category.Percentage))
		}
	}

	if variance := categoryVariance(analysis.Categories, overallPct); variance < 100 {
		insights = append(insights, "Your performance is consistent across all skill areas.")
	} else {
		insights = append(insights, "Your performance varies across skill areas; focus on your weaker topics to even it out.")
	}

	return insights
}

// GetResultsWithAnalysis assembles the full results view: score, category
// breakdown, knowledge gaps, insights and recommendations.
func (s *scoringService) GetResultsWithAnalysis(ctx context.Context, attemptID uint, userID string, recentQuizScore *float64) (*TestResultsResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		isAdmin, err := s.repo.User().HasRole(ctx, nil, userID, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to check role: %w", err)
		}
		if !isAdmin {
			return nil, NewPermissionError(userID, attemptID, "attempt", "read results", "not owned by user")
		}
	}
	if !attempt.IsCompleted() || attempt.Score == nil {
		return nil, ErrAttemptNotCompleted
	}

	analysis, err := s.AnalyzePerformance(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	gaps, err := s.IdentifyGaps(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	score := *attempt.Score
	level := models.LevelForScore(score)
	insights := s.GenerateInsights(analysis, float64(score))

	recommendations, err := s.recommendation.GetRecommendations(ctx, attempt.UserID, level, analysis, recentQuizScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	return &TestResultsResponse{
		AttemptID:       attemptID,
		Score:           score,
		Level:           level,
		Analysis:        analysis,
		Gaps:            gaps,
		Insights:        insights,
		Recommendations: recommendations,
	}, nil
}

// categoryVariance is the mean squared deviation of category percentages
// from the overall percentage, over categories that contain questions.
func categoryVariance(categories []CategoryPerformance, overallPct float64) float64 {
	var sum float64
	var n int
	for _, category := range categories {
		if category.Total == 0 {
			continue
		}
		diff := category.Percentage - overallPct
		sum += diff * diff
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
