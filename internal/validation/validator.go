// Package validation checks configuration structs with validator/v10 and
// reports failures as coded validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
)

// Validator wraps go-playground/validator.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that names fields by their `name` tag, falling
// back to the Go field name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("name"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates s. Failures are returned as a validation error whose
// Details map each field to a readable message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "validate")
	}

	details := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := namespace(fe)
		details[key] = message(fe)
		names = append(names, key+" "+details[key])
	}

	return apperrors.ValidationWithDetails("invalid configuration: "+strings.Join(names, "; "), details)
}

// namespace drops the top-level struct name, leaving e.g. "parser.max_tracks".
func namespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required with " + strings.ReplaceAll(strings.ToLower(fe.Param()), " ", ", ")
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "dir":
		return "must be an existing directory"
	case "file":
		return "must be an existing file"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
