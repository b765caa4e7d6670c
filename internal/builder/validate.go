package builder

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	if len(e.Fields) == 1 {
		return "missing required field: " + e.Fields[0]
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Missing lists empty required fields in form order.
func (in Input) Missing() []string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}

func (in Input) Validate() error {
	if missing := in.Missing(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
