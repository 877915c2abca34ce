package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// Create inserts a test with its nested questions and choices in one
// transaction. Admin only.
func (s *testService) Create(ctx context.Context, req *TestCreateRequest, creatorID string) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireAdmin(ctx, creatorID, 0, "create test"); err != nil {
		return nil, err
	}
	if err := validateQuestionSet(req.Questions); err != nil {
		return nil, err
	}

	test := &models.Test{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Language:    req.Language,
		CreatedBy:   creatorID,
	}
	for _, q := range req.Questions {
		question := models.Question{
			Text:       q.Text,
			OrderIndex: q.OrderIndex,
		}
		for _, c := range q.Choices {
			question.Choices = append(question.Choices, models.Choice{
				Text:      c.Text,
				IsCorrect: c.IsCorrect,
			})
		}
		test.Questions = append(test.Questions, question)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Test().Create(ctx, nil, test)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created",
		"test_id", test.ID,
		"language", test.Language,
		"questions", len(test.Questions),
		"created_by", creatorID)
	return test, nil
}

func (s *testService) Update(ctx context.Context, testID uint, req *TestUpdateRequest, userID string) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireAdmin(ctx, userID, testID, "update test"); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if req.Title != nil {
		test.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		test.Description = req.Description
	}

	if err := s.repo.Test().Update(ctx, nil, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

func (s *testService) Delete(ctx context.Context, testID uint, userID string) error {
	if err := s.requireAdmin(ctx, userID, testID, "delete test"); err != nil {
		return err
	}
	if err := s.repo.Test().Delete(ctx, nil, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}
	return nil
}

func (s *testService) GetByID(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *testService) GetByIDWithDetails(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test with details: %w", err)
	}
	return test, nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error) {
	tests, total, err := s.repo.Test().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return &TestListResponse{
		Tests:  tests,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *testService) GetStats(ctx context.Context, testID uint, userID string) (*repositories.TestStats, error) {
	if err := s.requireAdmin(ctx, userID, testID, "read test stats"); err != nil {
		return nil, err
	}
	stats, err := s.repo.Test().GetStats(ctx, nil, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test stats: %w", err)
	}
	return stats, nil
}

// ===== EXCEL IMPORT/EXPORT =====

// Import sheet layout, one question per row:
//
//	A: order index, B: question text, C..F: choices, G: correct choice letter
const (
	importColOrder       = 0
	importColText        = 1
	importColFirstChoice = 2
	importColLastChoice  = 5
	importColCorrect     = 6
)

// ImportFromExcel builds a test from an uploaded workbook. The first sheet
// row is a header; malformed rows are skipped and reported as warnings
// instead of aborting the import.
func (s *testService) ImportFromExcel(ctx context.Context, data []byte, creatorID string) (*ImportResult, error) {
	if err := s.requireAdmin(ctx, creatorID, 0, "import tests"); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewValidationError("file", "not a readable Excel workbook", nil)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "workbook has no question rows", nil)
	}

	language := models.LanguageASL
	if v, err := f.GetCellValue(sheet, "I1"); err == nil && models.SignLanguage(v) == models.LanguageMSL {
		language = models.LanguageMSL
	}

	test := &models.Test{
		Title:     sheet,
		Language:  language,
		CreatedBy: creatorID,
	}

	var warnings []string
	for i, row := range rows[1:] {
		question, warning := parseImportRow(row, i)
		if warning != "" {
			warnings = append(warnings, warning)
			continue
		}
		test.Questions = append(test.Questions, *question)
	}
	if len(test.Questions) == 0 {
		return nil, NewValidationError("file", "no valid question rows", nil)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Test().Create(ctx, nil, test)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import test: %w", err)
	}

	s.logger.Info("Test imported from Excel",
		"test_id", test.ID,
		"questions", len(test.Questions),
		"warnings", len(warnings))

	return &ImportResult{
		TestID:        test.ID,
		QuestionCount: len(test.Questions),
		Warnings:      warnings,
	}, nil
}

func parseImportRow(row []string, index int) (*models.Question, string) {
	rowNum := index + 2 // 1-based, after header
	if len(row) <= importColCorrect {
		return nil, fmt.Sprintf("row %d: too few columns", rowNum)
	}

	text := strings.TrimSpace(row[importColText])
	if text == "" {
		return nil, fmt.Sprintf("row %d: empty question text", rowNum)
	}

	correct := strings.ToUpper(strings.TrimSpace(row[importColCorrect]))
	if len(correct) != 1 || correct[0] < 'A' || correct[0] > 'D' {
		return nil, fmt.Sprintf("row %d: correct choice must be A-D", rowNum)
	}
	correctIdx := int(correct[0] - 'A')

	question := &models.Question{
		Text:       text,
		OrderIndex: index,
	}
	// Empty choice columns are skipped, so the correct flag follows the
	// column the letter names, not the position in the compacted slice.
	correctHasText := false
	for c := importColFirstChoice; c <= importColLastChoice && c < len(row); c++ {
		choiceText := strings.TrimSpace(row[c])
		if choiceText == "" {
			continue
		}
		isCorrect := c-importColFirstChoice == correctIdx
		if isCorrect {
			correctHasText = true
		}
		question.Choices = append(question.Choices, models.Choice{
			Text:      choiceText,
			IsCorrect: isCorrect,
		})
	}
	if len(question.Choices) < 2 {
		return nil, fmt.Sprintf("row %d: needs at least two choices", rowNum)
	}
	if !correctHasText {
		return nil, fmt.Sprintf("row %d: correct choice %s has no text", rowNum, correct)
	}

	return question, ""
}

// ExportResults writes all completed attempts of a test into a workbook.
func (s *testService) ExportResults(ctx context.Context, testID uint, userID string) ([]byte, error) {
	if err := s.requireAdmin(ctx, userID, testID, "export results"); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	completed := true
	attempts, _, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{
		TestID:    &testID,
		Completed: &completed,
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Attempt ID", "User ID", "Score", "Level", "Completed At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, attempt := range attempts {
		row := i + 2
		score := 0
		if attempt.Score != nil {
			score = *attempt.Score
		}
		values := []interface{}{
			attempt.ID,
			attempt.UserID,
			score,
			string(models.LevelForScore(score)),
			attempt.CompletedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Results exported",
		"test_id", test.ID,
		"attempts", len(attempts))
	return buf.Bytes(), nil
}

// ===== CONTENT ADMIN =====

func (s *testService) CreateTutorial(ctx context.Context, req *TutorialCreateRequest, userID string) (*models.Tutorial, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireAdmin(ctx, userID, 0, "create tutorial"); err != nil {
		return nil, err
	}

	tutorial := &models.Tutorial{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Level:       req.Level,
		Language:    req.Language,
		VideoURL:    req.VideoURL,
	}
	if err := s.repo.Content().CreateTutorial(ctx, nil, tutorial); err != nil {
		return nil, fmt.Errorf("failed to create tutorial: %w", err)
	}
	return tutorial, nil
}

func (s *testService) CreateQuiz(ctx context.Context, req *QuizCreateRequest, userID string) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireAdmin(ctx, userID, 0, "create quiz"); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Language:    req.Language,
	}
	if err := s.repo.Content().CreateQuiz(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	return quiz, nil
}

func (s *testService) CreateMaterial(ctx context.Context, req *MaterialCreateRequest, userID string) (*models.Material, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireAdmin(ctx, userID, 0, "create material"); err != nil {
		return nil, err
	}

	material := &models.Material{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Level:       req.Level,
		Language:    req.Language,
		FileURL:     req.FileURL,
	}
	if err := s.repo.Content().CreateMaterial(ctx, nil, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return material, nil
}

// ===== HELPERS =====

func (s *testService) requireAdmin(ctx context.Context, userID string, resourceID uint, action string) error {
	isAdmin, err := s.repo.User().HasRole(ctx, nil, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !isAdmin {
		return NewPermissionError(userID, resourceID, "test", action, "admin role required")
	}
	return nil
}

func validateQuestionSet(questions []validator.QuestionCreateRequest) error {
	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if seen[q.OrderIndex] {
			return NewValidationError(
				fmt.Sprintf("questions[%d].order_index", i),
				"duplicate order index", q.OrderIndex)
		}
		seen[q.OrderIndex] = true

		correct := 0
		for _, c := range q.Choices {
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return NewValidationError(
				fmt.Sprintf("questions[%d].choices", i),
				"exactly one choice must be correct", correct)
		}
	}
	return nil
}
