package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the "errors" list returned on 400. Clients read
// Msg and Param (the field name).
type FieldError struct {
	Value    any    `json:"value"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

const (
	msgEmail    = "Incorrect email"
	msgPassword = "Password must be at least 6 and no more than 18 characters"
	msgUsername = "Username must be at least 5 and no more than 18 characters"
	msgTZNeeded = "Timezone is required"
	msgTZBad    = "Unknown timezone"
)

// secretFields never have their values echoed back.
var secretFields = map[string]bool{"password": true, "RecoveryCode": true}

// ToErrors converts binding/validation errors into the field error list.
func ToErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return []FieldError{{Msg: "Request body is required", Param: "body", Location: "body"}}
	case errors.As(err, &se):
		return []FieldError{{Msg: "Invalid JSON", Param: "body", Location: "body"}}
	case errors.As(err, &ute):
		return []FieldError{{Msg: "must be of type " + ute.Type.String(), Param: ute.Field, Location: "body"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErr := FieldError{
				Value:    fe.Value(),
				Msg:      message(fe),
				Param:    fe.Field(),
				Location: "body",
			}
			if secretFields[fe.Field()] {
				fieldErr.Value = ""
			}
			out = append(out, fieldErr)
		}
		return out
	}

	return []FieldError{{Msg: "Invalid payload", Param: "body", Location: "body"}}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		return msgEmail
	case "password":
		return msgPassword
	case "username":
		return msgUsername
	case "Timezone":
		if fe.Tag() == "required" {
			return msgTZNeeded
		}
		return msgTZBad
	}
	return fe.Field() + " " + formatFieldError(fe)
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "tz":
		return "must be a valid timezone"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "title":
		return "must be between 1 and 255 characters long"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	default:
		if param != "" {
			return fmt.Sprintf("failed '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("failed '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
