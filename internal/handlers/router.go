package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/services"
	"github.com/signbridge/learning-service/internal/utils"
	"github.com/signbridge/learning-service/internal/validator"
)

type HandlerManager struct {
	attemptHandler  *AttemptHandler
	testHandler     *TestHandler
	learningHandler *LearningHandler
	userHandler     *UserHandler
	authMiddleware  *AuthMiddleware

	repo repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtSecret string,
	repo repositories.Repository,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), serviceManager.Scoring(), validator, logger),
		testHandler:     NewTestHandler(serviceManager.Test(), validator, logger),
		learningHandler: NewLearningHandler(serviceManager.LearningPath(), serviceManager.Recommendation(), serviceManager.User(), validator, logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		authMiddleware:  NewAuthMiddleware(jwtSecret, repo.User()),
		repo:            repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	adminOnly := hm.authMiddleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/finalize", hm.attemptHandler.FinalizeAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:id/results", hm.attemptHandler.GetResults)
		}

		tests := v1.Group("/tests")
		{
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)

			tests.POST("", adminOnly, hm.testHandler.CreateTest)
			tests.PUT("/:id", adminOnly, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", adminOnly, hm.testHandler.DeleteTest)
			tests.GET("/:id/stats", adminOnly, hm.testHandler.GetTestStats)
			tests.POST("/import", adminOnly, hm.testHandler.ImportTest)
			tests.GET("/:id/export", adminOnly, hm.testHandler.ExportResults)
		}

		content := v1.Group("/content", adminOnly)
		{
			content.POST("/tutorials", hm.testHandler.CreateTutorial)
			content.POST("/quizzes", hm.testHandler.CreateQuiz)
			content.POST("/materials", hm.testHandler.CreateMaterial)
		}

		learningPath := v1.Group("/learning-path")
		{
			learningPath.GET("", hm.learningHandler.GetLearningPath)
			learningPath.POST("/complete", hm.learningHandler.MarkCompleted)
			learningPath.GET("/adjust-difficulty/:quiz_id", hm.learningHandler.AdjustDifficulty)
		}

		v1.POST("/quiz-attempts", hm.learningHandler.RecordQuizAttempt)
		v1.GET("/recommendations", hm.learningHandler.GetRecommendations)

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("/me/stats", hm.userHandler.GetMyStats)
			users.PUT("/me", hm.userHandler.UpdateMe)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "learning-service",
	})
}
