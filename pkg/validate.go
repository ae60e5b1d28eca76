package pkg

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that names fields by their JSON tag,
// so errors point at the request field the client sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldPath is the JSON path of the failing field without the root struct name:
// "Command.water.amount" -> "water.amount".
func FieldPath(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		return rest
	}
	return field
}
