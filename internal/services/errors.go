package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services and mapped to HTTP statuses by
// the handler layer.
var (
	ErrTestNotFound       = errors.New("test not found")
	ErrTestHasNoQuestions = errors.New("test has no questions")

	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
	ErrAttemptNotCompleted     = errors.New("attempt not yet completed")
	ErrAttemptNotOwned         = errors.New("attempt does not belong to user")

	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionNotInTest   = errors.New("question does not belong to this test")
	ErrChoiceNotFound      = errors.New("choice not found")
	ErrChoiceNotInQuestion = errors.New("choice does not belong to this question")

	ErrUserNotFound = errors.New("user not found")

	ErrQuizNotFound    = errors.New("quiz not found")
	ErrContentNotFound = errors.New("content not found")
)

// ValidationError describes a request field that failed a business rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// PermissionError describes an operation the caller is not allowed to perform
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsValidationError reports whether err is a business-rule validation failure
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermissionError reports whether err is a permission failure
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
