// Package validation runs go-playground/validator struct checks and turns
// the result into the service's validation error.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medflow/medsupply-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", notBlank)
	return v
}

// Struct validates v using its `validate` tags.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest(err.Error())
	}

	details := make(map[string]string)
	for _, e := range validationErrors {
		details[fieldName(e)] = formatValidationError(e)
	}

	return errors.Validation(details)
}

// fieldName strips the top-level struct name so nested items read as
// "Items[0].Quantity" instead of "SubmitReorder.Items[0].Quantity".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "min":
		return "must have at least " + e.Param() + " entries"
	case "numeric":
		return "must be a number"
	case "date":
		return "must be a date (YYYY-MM-DD)"
	default:
		return "invalid value"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// RegisterCustomValidation registers a custom validation function
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
