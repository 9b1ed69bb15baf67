package shared

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct validation and flattens field errors into a
// single human-readable message.
func Validate(v any) error {
	return validate.Struct(v)
}

// ValidationMessage renders validator errors as "field: rule" pairs.
func ValidationMessage(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
