package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

func init() {
	// Report yaml key paths rather than Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError turns validator errors into one line per field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: %q must be one of [%s]", field, e.Value(), param))
		case "url":
			errs = append(errs, fmt.Errorf("%s: must be a URL", field))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
