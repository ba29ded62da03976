package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTourNotFound       = errors.New("tour not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrUnauthorized       = errors.New("not authorized to access this route")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailExists        = errors.New("user already exists")
	ErrCapacityExceeded   = errors.New("not enough spots left on this tour")
	ErrTourBusy           = errors.New("tour is being booked by someone else, please retry")
)

// ValidationError is a rejected input.  Message is safe to show to the
// client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// validate reports fields by their JSON name so messages match the request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and folds every failure
// into a single ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Message: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("please add %s", f)
	case "email":
		return "please add a valid email"
	case "max":
		if isString {
			return fmt.Sprintf("%s can not be more than %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s can not be more than %s", f, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", f)
}
