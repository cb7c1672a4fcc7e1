package validator

import (
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/asistia/care-api/pkg/errors"
)

// Validator validates request DTOs. A failed validation reports every
// violation found, never only the first.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report json field names instead of Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

func (va *Validator) Validate(obj interface{}) *errors.AppError {
	err := va.v.Struct(obj)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return errors.Validation(err.Error())
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, describe(fe))
	}
	return errors.Validation(violations...)
}

func describe(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("el campo %s es obligatorio", fe.Field())
	case "gt":
		return fmt.Sprintf("el campo %s debe ser mayor que %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("el campo %s debe ser mayor o igual que %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("el campo %s debe ser menor o igual que %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("el campo %s supera la longitud máxima de %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("el campo %s no alcanza la longitud mínima de %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("el campo %s no es un correo válido", fe.Field())
	case "oneof":
		return fmt.Sprintf("el campo %s debe ser uno de: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("el campo %s no es válido (%s)", fe.Field(), fe.Tag())
	}
}
