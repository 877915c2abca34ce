package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleDeaf    UserRole = "deaf"
	RoleNonDeaf UserRole = "non-deaf"
	RoleAdmin   UserRole = "admin"
)

type SignLanguage string

const (
	LanguageASL SignLanguage = "ASL"
	LanguageMSL SignLanguage = "MSL"
)

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "Beginner"
	LevelIntermediate ProficiencyLevel = "Intermediate"
	LevelAdvanced     ProficiencyLevel = "Advanced"
)

// LevelForScore maps an overall test score (0-100) to a proficiency tier.
// Boundaries are exact: 80 is still Intermediate, 81 is Advanced.
func LevelForScore(score int) ProficiencyLevel {
	switch {
	case score < 50:
		return LevelBeginner
	case score <= 80:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// PromoteLevel returns the next tier up, or the same tier when already at the top.
func PromoteLevel(level ProficiencyLevel) ProficiencyLevel {
	switch level {
	case LevelBeginner:
		return LevelIntermediate
	case LevelIntermediate:
		return LevelAdvanced
	default:
		return level
	}
}

// DemoteLevel returns the next tier down, or the same tier when already at the bottom.
func DemoteLevel(level ProficiencyLevel) ProficiencyLevel {
	switch level {
	case LevelAdvanced:
		return LevelIntermediate
	case LevelIntermediate:
		return LevelBeginner
	default:
		return level
	}
}

// UserProfile holds the learner's identity and per-language proficiency.
// ProficiencyLevel is the legacy global column kept for backward
// compatibility; the ASL/MSL columns are authoritative.
type UserProfile struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"default:non-deaf;index;size:20"`

	ProficiencyLevel    *ProficiencyLevel `json:"proficiency_level" gorm:"size:20"`
	ASLProficiencyLevel *ProficiencyLevel `json:"asl_proficiency_level" gorm:"size:20"`
	MSLProficiencyLevel *ProficiencyLevel `json:"msl_proficiency_level" gorm:"size:20"`
	PreferredLanguage   *SignLanguage     `json:"preferred_language" gorm:"size:10"`

	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// LevelFor returns the stored proficiency tier for a sign language,
// defaulting to Beginner when the user has never been assessed.
func (u *UserProfile) LevelFor(language SignLanguage) ProficiencyLevel {
	var level *ProficiencyLevel
	switch language {
	case LanguageMSL:
		level = u.MSLProficiencyLevel
	default:
		level = u.ASLProficiencyLevel
	}
	if level == nil {
		return LevelBeginner
	}
	return *level
}
