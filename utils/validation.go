package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"study-abroad-backend/utils/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks validate tags and reports the first failing field as
// a validation error.
func ValidateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("invalid request: %v", err)
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError("%s is required", field)
	case "email":
		return apperrors.NewValidationError("%s must be a valid email address", field)
	case "min":
		return apperrors.NewValidationError("%s must be at least %s", field, fe.Param())
	case "max":
		return apperrors.NewValidationError("%s must be at most %s", field, fe.Param())
	case "oneof":
		return apperrors.NewValidationError("%s must be one of: %s", field, fe.Param())
	case "uuid4", "uuid":
		return apperrors.NewValidationError("%s must be a valid id", field)
	default:
		return apperrors.NewValidationError("%s is invalid (%s)", field, fmt.Sprint(fe.Tag()))
	}
}
