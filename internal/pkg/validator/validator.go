package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Settlement reference type validation
	validate.RegisterValidation("reference_type", func(fl validator.FieldLevel) bool {
		refType := fl.Field().String()
		validTypes := []string{"order", "trade"}
		for _, t := range validTypes {
			if refType == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a field -> message map,
// or nil when the struct is valid
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = messageFor(fieldErr)
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "uuid":
		return "must be a valid UUID"
	case "reference_type":
		return "must be one of: order, trade"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
