package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/cache"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	return db.WithContext(ctx).Create(test).Error
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	var test models.Test
	if err := db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	// Test content changes rarely, so the full question/choice tree is cached
	cacheKey := fmt.Sprintf("details:%d", id)
	var test models.Test

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.Test
		if err := db.WithContext(ctx).
			Preload("Questions", func(q *gorm.DB) *gorm.DB {
				return q.Order("questions.order_index ASC")
			}).
			Preload("Questions.Choices").
			First(&dbTest, id).Error; err != nil {
			return nil, err
		}
		return &dbTest, nil
	})

	return &test, err
}

func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(test).Error; err != nil {
		return err
	}
	return t.cacheManager.InvalidateTest(ctx, test.ID)
}

func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Test{}, id).Error; err != nil {
		return err
	}
	return t.cacheManager.InvalidateTest(ctx, id)
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.Test{})
	query = t.helpers.ApplyTestFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = t.helpers.ApplyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) GetQuestions(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.Question, error) {
	db := t.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("order_index ASC").
		Preload("Choices").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions for test: %w", err)
	}
	return questions, nil
}

func (t *TestPostgreSQL) CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := t.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_id = ?", testID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (t *TestPostgreSQL) GetCorrectChoice(ctx context.Context, tx *gorm.DB, questionID uint) (*models.Choice, error) {
	db := t.getDB(tx)
	var choice models.Choice
	if err := db.WithContext(ctx).
		Where("question_id = ? AND is_correct = ?", questionID, true).
		First(&choice).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

func (t *TestPostgreSQL) GetChoice(ctx context.Context, tx *gorm.DB, choiceID uint) (*models.Choice, error) {
	db := t.getDB(tx)
	var choice models.Choice
	if err := db.WithContext(ctx).First(&choice, choiceID).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

func (t *TestPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, testID uint) (*repositories.TestStats, error) {
	db := t.getDB(tx)
	cacheKey := fmt.Sprintf("test:%d", testID)
	var stats repositories.TestStats

	err := t.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var result repositories.TestStats

		var total, completed int64
		if err := db.WithContext(ctx).
			Model(&models.TestAttempt{}).
			Where("test_id = ?", testID).
			Count(&total).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).
			Model(&models.TestAttempt{}).
			Where("test_id = ? AND completed_at IS NOT NULL", testID).
			Count(&completed).Error; err != nil {
			return nil, err
		}

		var avg *float64
		if err := db.WithContext(ctx).
			Model(&models.TestAttempt{}).
			Where("test_id = ? AND completed_at IS NOT NULL", testID).
			Select("AVG(score)").
			Scan(&avg).Error; err != nil {
			return nil, err
		}

		questionCount, err := t.CountQuestions(ctx, tx, testID)
		if err != nil {
			return nil, err
		}

		result.TotalAttempts = int(total)
		result.CompletedAttempts = int(completed)
		if avg != nil {
			result.AverageScore = *avg
		}
		result.QuestionCount = int(questionCount)
		return &result, nil
	})

	return &stats, err
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}
