package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/signbridge/learning-service/internal/repositories"
	"github.com/signbridge/learning-service/internal/services"
	"github.com/signbridge/learning-service/internal/utils"
	"github.com/signbridge/learning-service/internal/validator"
)

// ErrorResponse is the wire shape of every error reply
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps successful replies that carry data
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// BaseHandler carries shared request plumbing for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a handler entry with request context
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	h.logger.Info(msg, args...)
}

// parseIDParam parses a numeric path parameter. On failure it writes the
// 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// currentUserID extracts the authenticated user from the context. On
// failure it writes the 401 response itself and returns "".
func (h *BaseHandler) currentUserID(c *gin.Context) string {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	}
	return userID
}

// handleServiceError maps service errors to HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var serviceValidationErr *services.ValidationError
	var permissionErr *services.PermissionError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
	case errors.As(err, &serviceValidationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: serviceValidationErr.Error(),
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: permissionErr.Error(),
		})
	case errors.Is(err, services.ErrTestNotFound),
		errors.Is(err, services.ErrAttemptNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrChoiceNotFound),
		errors.Is(err, services.ErrQuizNotFound),
		errors.Is(err, services.ErrContentNotFound),
		errors.Is(err, services.ErrUserNotFound),
		repositories.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrAttemptAlreadyCompleted),
		errors.Is(err, services.ErrAttemptNotCompleted),
		errors.Is(err, services.ErrChoiceNotInQuestion),
		errors.Is(err, services.ErrQuestionNotInTest):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
