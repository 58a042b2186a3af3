package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/CDP-2025/course-service/internal/errors"
	"github.com/CDP-2025/course-service/internal/models"
)

// Validator wraps go-playground/validator with the project's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks a struct and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateUserRole(fl validator.FieldLevel) bool {
	return models.IsValidRole(fl.Field().String())
}

func ValidateProgressItemType(fl validator.FieldLevel) bool {
	validTypes := []models.ProgressItemType{
		models.ProgressItemCourse,
		models.ProgressItemMaterial,
		models.ProgressItemAssignment,
		models.ProgressItemQuiz,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateProgressStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.ProgressStatus{
		models.ProgressInProgress,
		models.ProgressCompleted,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", ValidateUserRole)
	validate.RegisterValidation("progress_item_type", ValidateProgressItemType)
	validate.RegisterValidation("progress_status", ValidateProgressStatus)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
