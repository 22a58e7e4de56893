package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func ValidateStruct(s interface{}) error {
	return getValidator().Struct(s)
}

// ValidateVar checks a single value against a tag such as "required,email".
func ValidateVar(field interface{}, tag string) error {
	return getValidator().Var(field, tag)
}

// TranslateError maps each failing field to its validation message.
// Errors that are not validation errors are reported under the "_" key.
func TranslateError(err error) map[string]string {
	result := make(map[string]string)
	if err == nil {
		return result
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result["_"] = err.Error()
		return result
	}
	for _, fe := range verrs {
		result[fe.Field()] = fe.Error()
	}
	return result
}

// Describe renders validation errors as a single line, e.g.
// "url must be a valid url".
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if name == "" {
			name = "value"
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", name))
		case "url", "http_url":
			parts = append(parts, fmt.Sprintf("%s must be a valid url", name))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", name))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %q validation", name, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
