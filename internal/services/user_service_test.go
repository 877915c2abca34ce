package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/validator"
)

func newUserServiceForTest(t *testing.T, repo *mockRepository) UserService {
	t.Helper()
	return NewUserService(repo, nil, testLogger(t), validator.New())
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		if id == "user-1" {
			return &models.UserProfile{ID: id, FullName: "Ana Learner"}, nil
		}
		return nil, repositories.ErrNotFound
	}
	service := newUserServiceForTest(t, repo)

	profile, err := service.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.FullName != "Ana Learner" {
		t.Errorf("Unexpected profile: %+v", profile)
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	repo := newMockRepository()
	service := newUserServiceForTest(t, repo)

	_, err := service.GetProfile(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_GetStats(t *testing.T) {
	ctx := context.Background()
	last := time.Date(2026, 4, 2, 9, 15, 0, 0, time.UTC)
	best := 92

	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		return &models.UserProfile{ID: id}, nil
	}
	repo.attempt.getUserStats = func(userID string) (*repositories.UserAttemptStats, error) {
		return &repositories.UserAttemptStats{
			TotalAttempts:     5,
			CompletedAttempts: 3,
			AverageScore:      78.5,
			BestScore:         &best,
			LastCompletedAt:   &last,
		}, nil
	}
	service := newUserServiceForTest(t, repo)

	stats, err := service.GetStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalAttempts != 5 || stats.CompletedAttempts != 3 {
		t.Errorf("Unexpected attempt counts: %+v", stats)
	}
	if stats.BestScore == nil || *stats.BestScore != 92 {
		t.Errorf("Expected best score 92, got %v", stats.BestScore)
	}
	if stats.LastCompletedAt == nil || !stats.LastCompletedAt.Equal(last) {
		t.Errorf("Expected last completion %v, got %v", last, stats.LastCompletedAt)
	}
}

func TestUserService_GetStats_UnknownUser(t *testing.T) {
	repo := newMockRepository()
	service := newUserServiceForTest(t, repo)

	_, err := service.GetStats(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	var saved *models.UserProfile
	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		return &models.UserProfile{
			ID:                id,
			FullName:          "Ana Learner",
			PreferredLanguage: languagePtr(models.LanguageASL),
		}, nil
	}
	repo.user.update = func(profile *models.UserProfile) error {
		saved = profile
		return nil
	}
	service := newUserServiceForTest(t, repo)

	profile, err := service.UpdateProfile(ctx, "user-1", &ProfileUpdateRequest{
		FullName:          strPtr("Ana B. Learner"),
		PreferredLanguage: languagePtr(models.LanguageMSL),
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if profile.FullName != "Ana B. Learner" {
		t.Errorf("Expected updated name, got %q", profile.FullName)
	}
	if profile.PreferredLanguage == nil || *profile.PreferredLanguage != models.LanguageMSL {
		t.Errorf("Expected MSL preference, got %v", profile.PreferredLanguage)
	}
	if saved == nil {
		t.Fatal("Expected profile persisted")
	}
}

func TestUserService_UpdateProfile_PartialUpdate(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.user.getByID = func(id string) (*models.UserProfile, error) {
		return &models.UserProfile{
			ID:                id,
			FullName:          "Ana Learner",
			PreferredLanguage: languagePtr(models.LanguageASL),
		}, nil
	}
	service := newUserServiceForTest(t, repo)

	profile, err := service.UpdateProfile(ctx, "user-1", &ProfileUpdateRequest{
		AvatarURL: strPtr("https://cdn.signbridge.io/avatars/user-1.png"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	// Untouched fields survive a partial update.
	if profile.FullName != "Ana Learner" {
		t.Errorf("Name should be untouched, got %q", profile.FullName)
	}
	if profile.PreferredLanguage == nil || *profile.PreferredLanguage != models.LanguageASL {
		t.Errorf("Language should be untouched, got %v", profile.PreferredLanguage)
	}
	if profile.AvatarURL == nil || *profile.AvatarURL != "https://cdn.signbridge.io/avatars/user-1.png" {
		t.Errorf("Expected avatar set, got %v", profile.AvatarURL)
	}
}

func TestUserService_UpdateProfile_InvalidLanguage(t *testing.T) {
	repo := newMockRepository()
	service := newUserServiceForTest(t, repo)

	bad := models.SignLanguage("BSL")
	_, err := service.UpdateProfile(context.Background(), "user-1", &ProfileUpdateRequest{
		PreferredLanguage: &bad,
	})
	if err == nil {
		t.Fatal("Expected validation error for unsupported language")
	}
}
