package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/events"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

// Start returns the user's most recent unfinished attempt for the test when
// one exists, otherwise it creates a fresh attempt. Calling it twice in a
// row therefore hands back the same attempt.
func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error) {
	s.logger.Info("Starting test attempt",
		"test_id", req.TestID,
		"user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	test, err := s.repo.Test().GetByID(ctx, nil, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	existing, err := s.repo.Attempt().GetIncompleteAttempt(ctx, nil, userID, req.TestID)
	if err == nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", existing.ID)
		return toAttemptResponse(existing, true), nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up incomplete attempt: %w", err)
	}

	attempt := &models.TestAttempt{
		TestID: test.ID,
		UserID: userID,
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Test attempt started",
		"attempt_id", attempt.ID,
		"test_id", req.TestID,
		"user_id", userID)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.EventAttemptStarted, events.AttemptStartedEvent{
			AttemptID: attempt.ID,
			TestID:    test.ID,
			UserID:    userID,
			Language:  string(test.Language),
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish attempt.started", "error", err)
		}
	}

	return toAttemptResponse(attempt, false), nil
}

// SubmitAnswer records the selected choice for a question, deriving the
// correctness flag at write time. Resubmitting the same question replaces
// the previous answer.
func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, userID string) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID, "answer")
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptAlreadyCompleted
	}

	choice, err := s.repo.Test().GetChoice(ctx, nil, req.ChoiceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChoiceNotFound
		}
		return nil, fmt.Errorf("failed to get choice: %w", err)
	}
	if choice.QuestionID != req.QuestionID {
		return nil, ErrChoiceNotInQuestion
	}

	answer := &models.Answer{
		AttemptID:  attempt.ID,
		QuestionID: req.QuestionID,
		ChoiceID:   req.ChoiceID,
		IsCorrect:  choice.IsCorrect,
	}
	if err := s.repo.Answer().Upsert(ctx, nil, answer); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	return &SubmitAnswerResponse{
		AttemptID:  attempt.ID,
		QuestionID: req.QuestionID,
		ChoiceID:   req.ChoiceID,
		IsCorrect:  choice.IsCorrect,
	}, nil
}

// Finalize scores the attempt and assigns the resulting proficiency tier.
// Unanswered questions count as wrong because the score is derived from two
// independent counts. The attempt update and the profile tier update are
// committed in one transaction. Re-finalizing re-derives the score and
// overwrites the previous result.
func (s *attemptService) Finalize(ctx context.Context, attemptID uint, userID string) (*FinalizeResponse, error) {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID, "finalize")
	if err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, nil, attempt.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	total, err := s.repo.Test().CountQuestions(ctx, nil, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	correct, err := s.repo.Answer().CountCorrect(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count correct answers: %w", err)
	}

	score := 0
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}
	level := models.LevelForScore(score)

	profile, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	previousLevel := profile.LevelFor(test.Language)

	now := time.Now()
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		attempt.Score = &score
		attempt.CompletedAt = &now
		if err := txRepo.Attempt().Update(ctx, nil, attempt); err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		if err := txRepo.User().UpdateProficiency(ctx, nil, userID, test.Language, level); err != nil {
			return fmt.Errorf("failed to update proficiency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.logger.Info("Test attempt finalized",
		"attempt_id", attempt.ID,
		"user_id", userID,
		"score", score,
		"level", level)

	s.publishCompletionEvents(ctx, attempt, test, score, previousLevel, level)

	return &FinalizeResponse{
		AttemptID:        attempt.ID,
		Score:            score,
		TotalQuestions:   int(total),
		CorrectAnswers:   int(correct),
		ProficiencyLevel: level,
		Language:         test.Language,
		CompletedAt:      now,
	}, nil
}

func (s *attemptService) GetByID(ctx context.Context, attemptID uint, userID string) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, nil, attemptID)
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
			return nil, NewPermissionError(userID, attemptID, "attempt", "read", "not owned by user")
		}
	}

	resp := toAttemptResponse(attempt, false)
	resp.Test = &attempt.Test
	resp.Answers = attempt.Answers
	return resp, nil
}

func (s *attemptService) ListByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	return s.repo.Attempt().GetByUser(ctx, nil, userID, filters)
}

// ===== HELPERS =====

func (s *attemptService) getOwnedAttempt(ctx context.Context, attemptID uint, userID, action string) (*models.TestAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, NewPermissionError(userID, attemptID, "attempt", action, "not owned by user")
	}
	return attempt, nil
}

func (s *attemptService) publishCompletionEvents(ctx context.Context, attempt *models.TestAttempt, test *models.Test, score int, previousLevel, newLevel models.ProficiencyLevel) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, events.EventAttemptCompleted, events.AttemptCompletedEvent{
		AttemptID: attempt.ID,
		TestID:    test.ID,
		UserID:    attempt.UserID,
		Score:     score,
		Level:     string(newLevel),
		Language:  string(test.Language),
	}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish attempt.completed", "error", err)
	}

	if previousLevel != newLevel {
		if err := s.publisher.Publish(ctx, events.EventProficiencyChanged, events.ProficiencyChangedEvent{
			UserID:        attempt.UserID,
			Language:      string(test.Language),
			PreviousLevel: string(previousLevel),
			NewLevel:      string(newLevel),
			Reason:        "proficiency_test",
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish proficiency.changed", "error", err)
		}
	}
}

func toAttemptResponse(attempt *models.TestAttempt, resumed bool) *AttemptResponse {
	return &AttemptResponse{
		ID:          attempt.ID,
		TestID:      attempt.TestID,
		UserID:      attempt.UserID,
		Score:       attempt.Score,
		CompletedAt: attempt.CompletedAt,
		CreatedAt:   attempt.CreatedAt,
		Resumed:     resumed,
	}
}
