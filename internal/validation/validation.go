// Package validation wraps go-playground/validator with the error
// taxonomy used at the HTTP boundary.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/emreakdogan/auth-service/internal/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates dst against its validator tags and returns a
// validation error listing every failed field.
func Struct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Internal(err)
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s %s", fe.Field(), msgForTag(fe)))
	}
	return apperrors.Validation("validation failed", fields...)
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
