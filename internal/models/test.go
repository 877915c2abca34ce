package models

import (
	"time"
)

// Category buckets are fixed order_index ranges, independent of how many
// questions a test actually has.
const (
	CategoryBasic        = "Basic Concepts"
	CategoryIntermediate = "Intermediate Skills"
	CategoryAdvanced     = "Advanced Techniques"
)

// CategoryForOrderIndex buckets a question by its order index:
// [0,3] Basic Concepts, [4,7] Intermediate Skills, [8,∞) Advanced Techniques.
func CategoryForOrderIndex(orderIndex int) string {
	switch {
	case orderIndex <= 3:
		return CategoryBasic
	case orderIndex <= 7:
		return CategoryIntermediate
	default:
		return CategoryAdvanced
	}
}

// CategoryNames in display order.
func CategoryNames() []string {
	return []string{CategoryBasic, CategoryIntermediate, CategoryAdvanced}
}

// Test is a proficiency test for one sign language. Immutable once
// published by content admins except through the admin surface.
type Test struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200" validate:"required"`
	Description *string      `json:"description" gorm:"type:text"`
	Language    SignLanguage `json:"language" gorm:"not null;index;size:10"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	Creator   UserProfile `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Test) TableName() string {
	return "tests"
}

type Question struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TestID     uint   `json:"test_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	OrderIndex int    `json:"order_index" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Test    Test     `json:"-" gorm:"foreignKey:TestID"`
	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// Choice is one selectable answer. Exactly one choice per question is
// expected to be correct; this is not structurally enforced.
type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (Choice) TableName() string {
	return "choices"
}
