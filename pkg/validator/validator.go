package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-stocktrack/pkg/apperror"
)

var validate = validator.New()

func init() {
	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

// ValidateStruct runs the struct tags and returns the failures as a ValidationError,
// or nil when everything passes.
func ValidateStruct(data interface{}) *apperror.ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fieldName(fe)] = messageFor(fe)
	}
	return &apperror.ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace is "Type.Field"; keep only the field, snake-cased like the JSON tags.
	ns := fe.StructNamespace()
	if i := strings.LastIndex(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnake(ns)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid_required":
		return "is required"
	default:
		return "failed on " + fe.Tag()
	}
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevUpper := i > 0 && runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			if i > 0 && !prevUpper {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
