// Package validation checks requests built by the caller before they are
// handed to a transport.
package validation

import (
	stderrors "errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
)

// eventNamePattern matches the characters the host accepts in event names.
var eventNamePattern = regexp.MustCompile(`^[A-Za-z0-9\-/:_]+$`)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("event_name", func(fl validator.FieldLevel) bool {
		return eventNamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register event_name: %v", err))
	}
	return v
}

// Struct validates a request struct against its `validate` tags.
// The first violation is returned as a *errors.ValidationError.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domainerrors.ValidationError{
			Field: fe.Namespace(),
			Err:   stderrors.New(describe(fe)),
		}
	}
	return &domainerrors.ValidationError{Err: err}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "required_if":
		return fmt.Sprintf("is required when %s", fe.Param())
	case "excluded_if":
		return fmt.Sprintf("must be empty when %s", fe.Param())
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", fe.Param())
	case "event_name":
		return fmt.Sprintf("%q may only contain alphanumerics, '-', '/', ':' and '_'", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
