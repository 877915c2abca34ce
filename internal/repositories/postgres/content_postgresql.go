package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/signbridge/learning-service/internal/cache"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

type ContentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewContentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ContentRepository {
	return &ContentPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ContentPostgreSQL) GetTutorials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Tutorial, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("tutorials:%s:%s", language, level)
	var tutorials []*models.Tutorial

	err := c.cacheManager.Content.CacheOrExecute(ctx, cacheKey, &tutorials, cache.ContentCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Tutorial
		if err := db.WithContext(ctx).
			Where("level = ? AND language = ?", level, language).
			Order("title ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get tutorials: %w", err)
		}
		return rows, nil
	})

	return tutorials, err
}

// GetQuizzes returns all quizzes for a language. Quizzes carry no level
// column, so no proficiency filter is applied here.
func (c *ContentPostgreSQL) GetQuizzes(ctx context.Context, tx *gorm.DB, language models.SignLanguage) ([]*models.Quiz, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("quizzes:%s", language)
	var quizzes []*models.Quiz

	err := c.cacheManager.Content.CacheOrExecute(ctx, cacheKey, &quizzes, cache.ContentCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Quiz
		if err := db.WithContext(ctx).
			Where("language = ?", language).
			Order("title ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get quizzes: %w", err)
		}
		return rows, nil
	})

	return quizzes, err
}

func (c *ContentPostgreSQL) GetMaterials(ctx context.Context, tx *gorm.DB, level models.ProficiencyLevel, language models.SignLanguage) ([]*models.Material, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("materials:%s:%s", language, level)
	var materials []*models.Material

	err := c.cacheManager.Content.CacheOrExecute(ctx, cacheKey, &materials, cache.ContentCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Material
		if err := db.WithContext(ctx).
			Where("level = ? AND language = ?", level, language).
			Order("title ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get materials: %w", err)
		}
		return rows, nil
	})

	return materials, err
}

func (c *ContentPostgreSQL) CreateTutorial(ctx context.Context, tx *gorm.DB, tutorial *models.Tutorial) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(tutorial).Error; err != nil {
		return err
	}
	return c.cacheManager.Content.InvalidatePattern(ctx, "tutorials:*")
}

func (c *ContentPostgreSQL) CreateQuiz(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return err
	}
	return c.cacheManager.Content.InvalidatePattern(ctx, "quizzes:*")
}

func (c *ContentPostgreSQL) CreateMaterial(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(material).Error; err != nil {
		return err
	}
	return c.cacheManager.Content.InvalidatePattern(ctx, "materials:*")
}

func (c *ContentPostgreSQL) CreateQuizAttempt(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (c *ContentPostgreSQL) GetRecentQuizAttempts(ctx context.Context, tx *gorm.DB, userID string, quizID uint, limit int) ([]*models.QuizAttempt, error) {
	db := c.getDB(tx)
	var attempts []*models.QuizAttempt
	if err := db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent quiz attempts: %w", err)
	}
	return attempts, nil
}

// MarkCompleted upserts on (user_id, content_type, content_id) so repeated
// completion calls stay idempotent.
func (c *ContentPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, progress *models.LearningProgress) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_type"}, {Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_at"}),
		}).
		Create(progress).Error
}

func (c *ContentPostgreSQL) GetProgress(ctx context.Context, tx *gorm.DB, userID string) ([]*models.LearningProgress, error) {
	db := c.getDB(tx)
	var progress []*models.LearningProgress
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to get learning progress: %w", err)
	}
	return progress, nil
}

func (c *ContentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
