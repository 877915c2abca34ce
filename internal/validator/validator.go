package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/signbridge/learning-service/internal/models"
)

// Validator wraps go-playground/validator with domain rules registered
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

// Validate validates struct tags and returns ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidationError describes a single failed field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates failed fields into a single error
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts go-playground errors to ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	var fieldErrors validator.ValidationErrors
	if ok := asFieldErrors(err, &fieldErrors); !ok {
		return nil
	}

	for _, fe := range fieldErrors {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

func asFieldErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrors
	return true
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "sign_language":
		return fmt.Sprintf("must be one of: %s, %s", models.LanguageASL, models.LanguageMSL)
	case "proficiency_level":
		return fmt.Sprintf("must be one of: %s, %s, %s",
			models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced)
	case "content_type":
		return fmt.Sprintf("must be one of: %s, %s, %s",
			models.ContentTutorial, models.ContentQuiz, models.ContentMaterial)
	case "test_title":
		return "must be between 1 and 200 characters"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// registerDomainRules registers custom domain validators
func (v *Validator) registerDomainRules() {
	v.validate.RegisterValidation("sign_language", func(fl validator.FieldLevel) bool {
		switch models.SignLanguage(fl.Field().String()) {
		case models.LanguageASL, models.LanguageMSL:
			return true
		}
		return false
	})

	v.validate.RegisterValidation("proficiency_level", func(fl validator.FieldLevel) bool {
		switch models.ProficiencyLevel(fl.Field().String()) {
		case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
			return true
		}
		return false
	})

	v.validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		switch models.ContentType(fl.Field().String()) {
		case models.ContentTutorial, models.ContentQuiz, models.ContentMaterial:
			return true
		}
		return false
	})

	// Title validation (1-200 characters after trimming)
	v.validate.RegisterValidation("test_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})
}
