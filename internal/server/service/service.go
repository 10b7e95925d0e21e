package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mdouchement/todo/internal/sferror"
)

var (
	validate = newValidator()

	usernameFormat = regexp.MustCompile(`^[\w.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields with their form name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameFormat.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return v
}

// check validates the given params and translates the failures into a ValidationError.
func check(params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := map[string]string{}
	for _, ferr := range verrs {
		if _, ok := fields[ferr.Field()]; ok {
			continue // Keep the first error of the field.
		}
		fields[ferr.Field()] = message(ferr)
	}
	return &sferror.ValidationError{Fields: fields}
}

func message(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", ferr.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", ferr.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "This value is invalid."
}
