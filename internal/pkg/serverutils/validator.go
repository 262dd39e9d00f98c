package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"studenthub-be/internal/pkg/apperrors"
)

var validate = validator.New()

// ValidateRequest checks struct tags and converts the first failure into a
// field-level validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.NewValidationError("request", err.Error())
	}

	first := validationErrors[0]
	return apperrors.NewValidationError(
		strings.ToLower(first.Field()),
		fmt.Sprintf("failed on '%s' rule", first.Tag()),
	)
}
