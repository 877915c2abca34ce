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

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.UserProfile, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("user:%s", id)
	var profile models.UserProfile

	err := u.cacheManager.Profile.CacheOrExecute(ctx, cacheKey, &profile, cache.ProfileCacheConfig.TTL, func() (interface{}, error) {
		var row models.UserProfile
		if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return u.cacheManager.InvalidateProfile(ctx, profile.ID)
}

// UpdateProficiency writes the language-scoped tier column, mirrors it into
// the legacy global column, and records the language as preferred, all in a
// single UPDATE.
func (u *UserPostgreSQL) UpdateProficiency(ctx context.Context, tx *gorm.DB, userID string, language models.SignLanguage, level models.ProficiencyLevel) error {
	db := u.getDB(tx)

	column := "asl_proficiency_level"
	if language == models.LanguageMSL {
		column = "msl_proficiency_level"
	}

	result := db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			column:               level,
			"proficiency_level":  level,
			"preferred_language": language,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update proficiency: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return u.cacheManager.InvalidateProfile(ctx, userID)
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("user:%s", id)
	var exists bool

	err := u.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &exists, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := db.WithContext(ctx).Model(&models.UserProfile{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check user existence: %w", err)
		}
		return count > 0, nil
	})

	return exists, err
}

func (u *UserPostgreSQL) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error) {
	db := u.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ? AND role = ?", id, role).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user role: %w", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}
