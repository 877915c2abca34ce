package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

func newTestServiceForTest(t *testing.T, repo repositories.Repository) TestService {
	t.Helper()
	return NewTestService(repo, nil, testLogger(t), validator.New())
}

func adminRepo() *mockRepository {
	repo := newMockRepository()
	repo.user.hasRole = func(id string, role models.UserRole) (bool, error) {
		return role == models.RoleAdmin, nil
	}
	return repo
}

func TestTestService_Create(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *TestCreateRequest {
		return &TestCreateRequest{
			Title:    "ASL Proficiency Test",
			Language: models.LanguageASL,
			Questions: []QuestionCreateRequest{
				{
					Text:       "What is the sign for hello?",
					OrderIndex: 0,
					Choices: []ChoiceCreateRequest{
						{Text: "Wave from forehead", IsCorrect: true},
						{Text: "Thumbs up"},
					},
				},
				{
					Text:       "What is the sign for thank you?",
					OrderIndex: 1,
					Choices: []ChoiceCreateRequest{
						{Text: "Flat hand from chin", IsCorrect: true},
						{Text: "Fist on chest"},
					},
				},
			},
		}
	}

	t.Run("builds the full question tree", func(t *testing.T) {
		var created *models.Test
		repo := adminRepo()
		repo.test.create = func(test *models.Test) error {
			test.ID = 7
			created = test
			return nil
		}
		service := newTestServiceForTest(t, repo)

		test, err := service.Create(ctx, validRequest(), "admin-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if test.ID != 7 || test.CreatedBy != "admin-1" {
			t.Errorf("Unexpected test: %+v", test)
		}
		if created == nil || len(created.Questions) != 2 {
			t.Fatalf("Expected 2 questions persisted, got %+v", created)
		}
		if len(created.Questions[0].Choices) != 2 || !created.Questions[0].Choices[0].IsCorrect {
			t.Errorf("Unexpected choices: %+v", created.Questions[0].Choices)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		repo := newMockRepository()
		service := newTestServiceForTest(t, repo)

		_, err := service.Create(ctx, validRequest(), "learner-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("duplicate order index rejected", func(t *testing.T) {
		repo := adminRepo()
		service := newTestServiceForTest(t, repo)

		req := validRequest()
		req.Questions[1].OrderIndex = 0

		_, err := service.Create(ctx, req, "admin-1")
		if !IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("question without a correct choice rejected", func(t *testing.T) {
		repo := adminRepo()
		service := newTestServiceForTest(t, repo)

		req := validRequest()
		req.Questions[0].Choices[0].IsCorrect = false

		_, err := service.Create(ctx, req, "admin-1")
		if !IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("question with two correct choices rejected", func(t *testing.T) {
		repo := adminRepo()
		service := newTestServiceForTest(t, repo)

		req := validRequest()
		req.Questions[0].Choices[1].IsCorrect = true

		_, err := service.Create(ctx, req, "admin-1")
		if !IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})
}

// importWorkbook builds an upload the way admins fill the template: header
// row, then one question per row with choices in C-F and the correct letter
// in G.
func importWorkbook(t *testing.T, language string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []interface{}{"Order", "Question", "Choice A", "Choice B", "Choice C", "Choice D", "Correct"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	if language != "" {
		f.SetCellValue(sheet, "I1", language)
	}

	for r, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	return buf.Bytes()
}

func TestTestService_ImportFromExcel(t *testing.T) {
	ctx := context.Background()

	t.Run("imports valid rows and reports bad ones", func(t *testing.T) {
		var created *models.Test
		repo := adminRepo()
		repo.test.create = func(test *models.Test) error {
			test.ID = 9
			created = test
			return nil
		}
		service := newTestServiceForTest(t, repo)

		data := importWorkbook(t, "", [][]interface{}{
			{1, "Sign for hello?", "Wave from forehead", "Thumbs up", "Fist", "Point", "A"},
			{2, "", "Choice", "Choice", "", "", "B"},
			{3, "Sign for please?", "Circle on chest", "Tap chin", "", "", "E"},
			{4, "Sign for sorry?", "Fist circle on chest", "Flat hand wave", "", "", "b"},
		})

		result, err := service.ImportFromExcel(ctx, data, "admin-1")
		if err != nil {
			t.Fatalf("ImportFromExcel failed: %v", err)
		}

		if result.TestID != 9 {
			t.Errorf("Expected test ID 9, got %d", result.TestID)
		}
		if result.QuestionCount != 2 {
			t.Errorf("Expected 2 imported questions, got %d", result.QuestionCount)
		}
		if len(result.Warnings) != 2 {
			t.Fatalf("Expected 2 warnings, got %v", result.Warnings)
		}
		if !strings.Contains(result.Warnings[0], "row 3") || !strings.Contains(result.Warnings[0], "question text") {
			t.Errorf("Unexpected warning: %q", result.Warnings[0])
		}
		if !strings.Contains(result.Warnings[1], "row 4") || !strings.Contains(result.Warnings[1], "A-D") {
			t.Errorf("Unexpected warning: %q", result.Warnings[1])
		}

		if created == nil || len(created.Questions) != 2 {
			t.Fatalf("Expected persisted questions, got %+v", created)
		}
		if created.Language != models.LanguageASL {
			t.Errorf("Expected default ASL language, got %s", created.Language)
		}

		first := created.Questions[0]
		if len(first.Choices) != 4 || !first.Choices[0].IsCorrect {
			t.Errorf("Unexpected first question choices: %+v", first.Choices)
		}

		// Lowercase correct letter still resolves.
		second := created.Questions[1]
		if len(second.Choices) != 2 || !second.Choices[1].IsCorrect {
			t.Errorf("Unexpected second question choices: %+v", second.Choices)
		}
	})

	t.Run("reads language marker", func(t *testing.T) {
		var created *models.Test
		repo := adminRepo()
		repo.test.create = func(test *models.Test) error {
			created = test
			return nil
		}
		service := newTestServiceForTest(t, repo)

		data := importWorkbook(t, "MSL", [][]interface{}{
			{1, "Sign for hello?", "Wave", "Salute", "", "", "A"},
		})

		if _, err := service.ImportFromExcel(ctx, data, "admin-1"); err != nil {
			t.Fatalf("ImportFromExcel failed: %v", err)
		}
		if created.Language != models.LanguageMSL {
			t.Errorf("Expected MSL, got %s", created.Language)
		}
	})

	t.Run("rejects workbook with no valid rows", func(t *testing.T) {
		repo := adminRepo()
		service := newTestServiceForTest(t, repo)

		data := importWorkbook(t, "", [][]interface{}{
			{1, "", "", "", "", "", ""},
		})

		_, err := service.ImportFromExcel(ctx, data, "admin-1")
		if !IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejects non-Excel payload", func(t *testing.T) {
		repo := adminRepo()
		service := newTestServiceForTest(t, repo)

		_, err := service.ImportFromExcel(ctx, []byte("definitely not a workbook"), "admin-1")
		if !IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		repo := newMockRepository()
		service := newTestServiceForTest(t, repo)

		_, err := service.ImportFromExcel(ctx, []byte{}, "learner-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})
}

func TestParseImportRow(t *testing.T) {
	tests := []struct {
		name        string
		row         []string
		wantWarning string
	}{
		{
			name:        "too few columns",
			row:         []string{"1", "Question?", "A", "B"},
			wantWarning: "too few columns",
		},
		{
			name:        "one choice only",
			row:         []string{"1", "Question?", "Only choice", "", "", "", "A"},
			wantWarning: "at least two choices",
		},
		{
			name:        "correct letter beyond provided choices",
			row:         []string{"1", "Question?", "First", "Second", "", "", "D"},
			wantWarning: "has no text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question, warning := parseImportRow(tt.row, 0)
			if question != nil {
				t.Errorf("Expected rejection, got question %+v", question)
			}
			if !strings.Contains(warning, tt.wantWarning) {
				t.Errorf("Expected warning containing %q, got %q", tt.wantWarning, warning)
			}
		})
	}

	t.Run("empty middle column keeps letter mapping", func(t *testing.T) {
		// First choice column blank, correct letter names the third column,
		// which has text. The compacted slice has two choices and the second
		// one carries the flag.
		question, warning := parseImportRow([]string{"1", "Question?", "", "Second", "Third", "", "C"}, 0)
		if warning != "" {
			t.Fatalf("Unexpected warning: %q", warning)
		}
		if len(question.Choices) != 2 {
			t.Fatalf("Expected 2 choices, got %+v", question.Choices)
		}
		if question.Choices[0].IsCorrect || !question.Choices[1].IsCorrect {
			t.Errorf("Expected the third column's text flagged correct: %+v", question.Choices)
		}
	})

	t.Run("correct letter names an empty column", func(t *testing.T) {
		question, warning := parseImportRow([]string{"1", "Question?", "First", "", "Third", "", "B"}, 0)
		if question != nil {
			t.Errorf("Expected rejection, got question %+v", question)
		}
		if !strings.Contains(warning, "has no text") {
			t.Errorf("Expected warning containing %q, got %q", "has no text", warning)
		}
	})

	t.Run("valid row", func(t *testing.T) {
		question, warning := parseImportRow([]string{"1", "Question?", "First", "Second", "Third", "", "C"}, 4)
		if warning != "" {
			t.Fatalf("Unexpected warning: %q", warning)
		}
		if question.OrderIndex != 4 {
			t.Errorf("Expected order index 4, got %d", question.OrderIndex)
		}
		if len(question.Choices) != 3 || !question.Choices[2].IsCorrect {
			t.Errorf("Unexpected choices: %+v", question.Choices)
		}
	})
}

func TestTestService_ExportResults(t *testing.T) {
	ctx := context.Background()
	completedAt := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	score1, score2 := 90, 45
	repo := adminRepo()
	repo.test.getByID = func(id uint) (*models.Test, error) {
		return &models.Test{ID: id, Title: "ASL Basics", Language: models.LanguageASL}, nil
	}
	repo.attempt.list = func(filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
		if filters.Completed == nil || !*filters.Completed {
			t.Error("Expected filter for completed attempts")
		}
		return []*models.TestAttempt{
			{ID: 1, UserID: "user-1", Score: &score1, CompletedAt: &completedAt},
			{ID: 2, UserID: "user-2", Score: &score2, CompletedAt: &completedAt},
		}, 2, nil
	}

	service := newTestServiceForTest(t, repo)

	data, err := service.ExportResults(ctx, 7, "admin-1")
	if err != nil {
		t.Fatalf("ExportResults failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("Failed to read Results sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}

	wantHeader := []string{"Attempt ID", "User ID", "Score", "Level", "Completed At"}
	for i, header := range wantHeader {
		if rows[0][i] != header {
			t.Errorf("Header %d: expected %q, got %q", i, header, rows[0][i])
		}
	}

	if rows[1][1] != "user-1" || rows[1][2] != "90" || rows[1][3] != string(models.LevelAdvanced) {
		t.Errorf("Unexpected first data row: %v", rows[1])
	}
	if rows[2][1] != "user-2" || rows[2][2] != "45" || rows[2][3] != string(models.LevelBeginner) {
		t.Errorf("Unexpected second data row: %v", rows[2])
	}
}

func TestTestService_GetByID(t *testing.T) {
	repo := newMockRepository()
	repo.test.getByID = func(id uint) (*models.Test, error) {
		if id == 7 {
			return &models.Test{ID: 7, Title: "ASL Basics"}, nil
		}
		return nil, repositories.ErrNotFound
	}
	service := newTestServiceForTest(t, repo)

	if _, err := service.GetByID(context.Background(), 7); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if _, err := service.GetByID(context.Background(), 8); err != ErrTestNotFound {
		t.Fatalf("Expected ErrTestNotFound, got %v", err)
	}
}

func TestTestService_List(t *testing.T) {
	repo := newMockRepository()
	repo.test.list = func(filters repositories.TestFilters) ([]*models.Test, int64, error) {
		tests := make([]*models.Test, 0, 3)
		for i := 1; i <= 3; i++ {
			tests = append(tests, &models.Test{ID: uint(i), Title: fmt.Sprintf("Test %d", i)})
		}
		return tests, 25, nil
	}
	service := newTestServiceForTest(t, repo)

	resp, err := service.List(context.Background(), repositories.TestFilters{Limit: 3, Offset: 6})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(resp.Tests) != 3 || resp.Total != 25 || resp.Limit != 3 || resp.Offset != 6 {
		t.Errorf("Unexpected listing: %+v", resp)
	}
}
