package repositories

import (
	"time"

	"github.com/signbridge/learning-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Language  *models.SignLanguage `json:"language"`
	CreatedBy *string              `json:"created_by"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	UserID    *string    `json:"user_id"`
	TestID    *uint      `json:"test_id"`
	Completed *bool      `json:"completed"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type ContentFilters struct {
	Level    *models.ProficiencyLevel `json:"level"`
	Language *models.SignLanguage     `json:"language"`
	Role     *models.UserRole         `json:"role"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type TestStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
	QuestionCount     int     `json:"question_count"`
}

type UserAttemptStats struct {
	TotalAttempts     int64    `json:"total_attempts"`
	CompletedAttempts int64    `json:"completed_attempts"`
	AverageScore      float64  `json:"average_score"`
	BestScore         *int     `json:"best_score"`
	LastCompletedAt   *time.Time `json:"last_completed_at"`
}
