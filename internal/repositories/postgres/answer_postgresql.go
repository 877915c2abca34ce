package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB, _ *redis.Client) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert writes an answer keyed on (attempt_id, question_id). A conflicting
// row is overwritten, which makes answer submission idempotent under retries
// and lets a resubmitted answer replace the prior one without app-level
// locking.
func (r *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := r.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"choice_id", "is_correct", "updated_at"}),
		}).
		Create(answer).Error
}

func (r *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	db := r.getDB(tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Preload("Question").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers for attempt: %w", err)
	}
	return answers, nil
}

func (r *AnswerPostgreSQL) GetIncorrectByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	db := r.getDB(tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Where("attempt_id = ? AND is_correct = ?", attemptID, false).
		Preload("Question").
		Preload("Choice").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get incorrect answers for attempt: %w", err)
	}
	return answers, nil
}

func (r *AnswerPostgreSQL) CountCorrect(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("attempt_id = ? AND is_correct = ?", attemptID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
