package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/signbridge/learning-service/internal/cache"
	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	if err := db.WithContext(ctx).
		Preload("Test").
		Preload("Answers").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(attempt).Error; err != nil {
		return err
	}
	// Completed attempts feed cached stats
	return a.cacheManager.Stats.Delete(ctx, fmt.Sprintf("test:%d", attempt.TestID))
}

func (a *AttemptPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Delete(&models.TestAttempt{}, id).Error
}

// GetIncompleteAttempt returns the most recent attempt without a completion
// timestamp, which is the one a returning user resumes.
func (a *AttemptPostgreSQL) GetIncompleteAttempt(ctx context.Context, tx *gorm.DB, userID string, testID uint) (*models.TestAttempt, error) {
	db := a.getDB(tx)
	var attempt models.TestAttempt
	if err := db.WithContext(ctx).
		Where("user_id = ? AND test_id = ? AND completed_at IS NULL", userID, testID).
		Order("created_at DESC").
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.TestAttempt
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.TestAttempt{})
	query = a.helpers.ApplyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.UserID = &userID
	return a.List(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) GetUserStats(ctx context.Context, tx *gorm.DB, userID string) (*repositories.UserAttemptStats, error) {
	db := a.getDB(tx)

	var stats repositories.UserAttemptStats
	if err := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	completed := db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID)

	if err := completed.Count(&stats.CompletedAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed attempts: %w", err)
	}

	if stats.CompletedAttempts > 0 {
		row := struct {
			Avg  float64
			Best int
			Last *time.Time
		}{}
		if err := db.WithContext(ctx).
			Model(&models.TestAttempt{}).
			Where("user_id = ? AND completed_at IS NOT NULL", userID).
			Select("AVG(score) AS avg, MAX(score) AS best, MAX(completed_at) AS last").
			Scan(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate scores: %w", err)
		}
		stats.AverageScore = row.Avg
		stats.BestScore = &row.Best
		stats.LastCompletedAt = row.Last
	}

	return &stats, nil
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
