// Package validation checks records against their `validate` struct tags.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error reports every field that failed validation, keyed by its JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns an Error for a single field.
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("decimal", checkDecimal); err != nil {
		panic(err)
	}
	return v
}

// checkDecimal backs the `decimal=P:S` tag: a float that fits a NUMERIC(P,S)
// column without rounding, i.e. at most S fractional and P-S integer digits.
func checkDecimal(fl validator.FieldLevel) bool {
	precision, scale, ok := decimalParam(fl.Param())
	if !ok {
		return false
	}
	f := fl.Field()
	if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
		return false
	}
	v := f.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	whole = strings.TrimLeft(whole, "0")
	return len(frac) <= scale && len(whole) <= precision-scale
}

func decimalParam(param string) (precision, scale int, ok bool) {
	p, s, found := strings.Cut(param, ":")
	if !found {
		return 0, 0, false
	}
	precision, perr := strconv.Atoi(p)
	scale, serr := strconv.Atoi(s)
	if perr != nil || serr != nil || scale < 0 || precision < scale {
		return 0, 0, false
	}
	return precision, scale, true
}

// Struct validates rec and returns *Error when any rule fails.
func Struct(rec any) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "decimal":
		if precision, scale, ok := decimalParam(fe.Param()); ok {
			return fmt.Sprintf("must have at most %d digits before and %d after the decimal point", precision-scale, scale)
		}
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
