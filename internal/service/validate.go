package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Field errors are reported under their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// check runs the validate tags of req and records one error per failing field
func (f *fieldErrors) check(req any) {
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(req), &verrs) {
		return
	}
	for _, fe := range verrs {
		message, code := describe(fe)
		f.add(fe.Field(), message, code)
	}
}

func describe(fe validator.FieldError) (message, code string) {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required", "required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param()), "out_of_range"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param()), "out_of_range"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param()), "out_of_range"
	default:
		return "is invalid", "invalid"
	}
}
