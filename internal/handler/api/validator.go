package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/njord/internal/domain"
	"github.com/dukerupert/njord/internal/service"
)

// Validator adapts go-playground/validator to Echo's Validator interface,
// reporting failures as domain validation errors keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator with the custom tags the write
// payloads use.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return service.ValidOrderStatus(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.Internal(err, "api.validate", "request validation failed")
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &domain.ValidationError{Op: "api.validate", Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "iso4217":
		return "must be a valid ISO 4217 currency code"
	case "order_status":
		return "is not a valid order status"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
