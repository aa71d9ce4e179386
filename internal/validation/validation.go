// Package validation checks request structs with go-playground/validator and
// turns the failures into per-field, localized messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
)

// phonePattern accepts local Bulgarian numbers (0888 123 456) and E.164
// (+359888123456). Spaces, dashes, dots and parentheses are stripped first.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

var phoneNoise = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON name so the form can highlight them.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
	})
	return validate
}

// IsPhone reports whether s looks like a phone number we can call back.
func IsPhone(s string) bool {
	return phonePattern.MatchString(phoneNoise.Replace(strings.TrimSpace(s)))
}

// NormalizePhone strips formatting characters from s.
func NormalizePhone(s string) string {
	return phoneNoise.Replace(strings.TrimSpace(s))
}

// Error lists field failures as message keys; Messages renders them.
// It wraps domain.ErrValidation.
type Error struct {
	// Fields maps JSON field name -> i18n key.
	Fields map[string]string
	params map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, key := range e.Fields {
		parts = append(parts, field+": "+key)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return domain.ErrValidation }

// Messages renders every field failure in lang.
func (e *Error) Messages(lang string) map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, key := range e.Fields {
		if p := e.params[field]; p != "" {
			out[field] = i18n.T(key, lang, p)
		} else {
			out[field] = i18n.T(key, lang)
		}
	}
	return out
}

// Add records a failure for field outside of struct tags.
func (e *Error) Add(field, key string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = key
}

// Struct validates v against its `validate` tags.
// It returns nil when v is valid, so callers must not compare the result to a
// typed-nil *Error.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: map[string]string{}, params: map[string]string{}}
	for _, fe := range verrs {
		key := keyFor(fe.Tag())
		out.Fields[fe.Field()] = key
		if takesParam(key) && fe.Param() != "" {
			out.params[fe.Field()] = strings.ReplaceAll(fe.Param(), " ", ", ")
		}
	}
	return out
}

func takesParam(key string) bool {
	return key == "validation.min" || key == "validation.max" || key == "validation.oneof"
}

func keyFor(tag string) string {
	switch tag {
	case "required", "required_without", "required_with":
		return "validation.required"
	case "email":
		return "validation.email"
	case "phone":
		return "validation.phone"
	case "min":
		return "validation.min"
	case "max":
		return "validation.max"
	case "oneof":
		return "validation.oneof"
	case "uuid", "uuid4":
		return "validation.uuid"
	default:
		return "validation.invalid"
	}
}
