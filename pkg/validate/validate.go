package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator plugs validator/v10 into echo and reports field names by their json tag.
type CustomValidator struct {
	v *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := tagName(fld.Tag.Get("json"))
		if name == "" {
			name = tagName(fld.Tag.Get("form"))
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{v: v}
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// Var validates a single value against a tag, e.g. "url".
func (cv *CustomValidator) Var(field interface{}, tag string) error {
	return cv.v.Var(field, tag)
}

// Fields maps every failed field to a short message. Non-validation errors land under "".
func Fields(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = message(e)
	}
	return out
}

// Message is the message of the first failed check, for errors from Var.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid"
	}
	return message(verrs[0])
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalidEmail"
	case "url", "http_url":
		return "invalidUrl"
	case "eqfield":
		return "passwordsMismatch"
	case "oneof":
		return "mustBeOneOf"
	case "min":
		return "tooShort"
	case "gte", "gt":
		return "tooSmall"
	default:
		return "invalid"
	}
}
