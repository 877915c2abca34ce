package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/services"
	"github.com/signbridge/learning-service/internal/utils"
	"github.com/signbridge/learning-service/internal/validator"
)

type LearningHandler struct {
	BaseHandler
	learningPathService   services.LearningPathService
	recommendationService services.RecommendationService
	userService           services.UserService
	validator             *validator.Validator
}

func NewLearningHandler(
	learningPathService services.LearningPathService,
	recommendationService services.RecommendationService,
	userService services.UserService,
	validator *validator.Validator,
	logger utils.Logger,
) *LearningHandler {
	return &LearningHandler{
		BaseHandler:           NewBaseHandler(logger),
		learningPathService:   learningPathService,
		recommendationService: recommendationService,
		userService:           userService,
		validator:             validator,
	}
}

// GetLearningPath returns the current adaptive path, regenerated on every
// call. ?language= selects the sign language, defaulting to the profile's
// preference.
// GET /learning-path
func (h *LearningHandler) GetLearningPath(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == "" {
		return
	}

	language, ok := h.resolveLanguage(c, userID)
	if !ok {
		return
	}

	path, err := h.learningPathService.GetCurrentLearningPath(c.Request.Context(), userID, language)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"language": language,
		"items":    path,
	})
}

// MarkCompleted marks a path item as finished.
// POST /learning-path/complete
func (h *LearningHandler) MarkCompleted(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == "" {
		return
	}

	var req services.MarkCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.learningPathService.MarkCompleted(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustDifficulty suggests a tier shift from recent quiz performance.
// GET /learning-path/adjust-difficulty/:quiz_id
func (h *LearningHandler) AdjustDifficulty(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	userID := h.currentUserID(c)
	if userID == "" {
		return
	}

	adjustment, err := h.learningPathService.AdjustDifficulty(c.Request.Context(), userID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// RecordQuizAttempt stores a finished quiz run.
// POST /quiz-attempts
func (h *LearningHandler) RecordQuizAttempt(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == "" {
		return
	}

	var req services.QuizAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.learningPathService.RecordQuizAttempt(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

// GetRecommendations returns prioritized content for the caller's stored
// tier, without requiring a fresh attempt analysis.
// GET /recommendations
func (h *LearningHandler) GetRecommendations(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == "" {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	language, ok := h.resolveLanguage(c, userID)
	if !ok {
		return
	}
	level := profile.LevelFor(language)

	recommendations, err := h.recommendationService.GetRecommendations(c.Request.Context(), userID, level, nil, nil)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"level":           level,
		"recommendations": recommendations,
	})
}

// resolveLanguage picks the sign language from the query, falling back to
// the profile preference, then ASL. A bad value is a 400; false means the
// response was already written.
func (h *LearningHandler) resolveLanguage(c *gin.Context, userID string) (models.SignLanguage, bool) {
	if raw := c.Query("language"); raw != "" {
		language := models.SignLanguage(raw)
		if language != models.LanguageASL && language != models.LanguageMSL {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "language must be ASL or MSL",
			})
			return "", false
		}
		return language, true
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return "", false
	}
	if profile.PreferredLanguage != nil {
		return *profile.PreferredLanguage, true
	}
	return models.LanguageASL, true
}
