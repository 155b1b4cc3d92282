package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report json names so errors match request fields
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// Normalizer is implemented by requests that canonicalize bound values, such as
// enum casing, before validation.
type Normalizer interface {
	Normalize()
}

// ReadAndValidateRequest binds path, query and body, applies defaults, normalizes and
// validates. It returns nil or a []ValidationError.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return bindErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return bindErrors(err)
	}
	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

// bindErrors covers malformed input, such as a non-numeric signal_bin, that never
// reaches the validator.
func bindErrors(err error) []ValidationError {
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprintf("%v", he.Message)
	}
	return []ValidationError{{Code: "ERR_BIND", Message: msg}}
}

func fieldErrors(err error) []ValidationError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return bindErrors(err)
	}
	errs := make([]ValidationError, 0, len(ves))
	for _, fe := range ves {
		msg, params := describe(fe)
		errs = append(errs, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: msg,
			Params:  params,
		})
	}
	return errs
}

func describe(fe validator.FieldError) (string, map[string]interface{}) {
	field, p := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return field + " is required", nil
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, p), map[string]interface{}{"max": p}
		}
		return fmt.Sprintf("%s must be at most %s", field, p), map[string]interface{}{"max": p}
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, p), map[string]interface{}{"min": p}
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, p), map[string]interface{}{"max": p}
	case "oneof":
		opts := strings.Fields(p)
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(opts, ", ")), map[string]interface{}{"options": opts}
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag()), nil
	}
}
