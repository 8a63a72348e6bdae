// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/amirphl/counter-api/app/dto"
	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names and understands dto.Optional
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if o, ok := field.Interface().(dto.Optional[string]); ok && o.Value != nil {
			return *o.Value
		}
		return nil
	}, dto.Optional[string]{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if o, ok := field.Interface().(dto.Optional[int64]); ok && o.Value != nil {
			return *o.Value
		}
		return nil
	}, dto.Optional[int64]{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(dto.UpdateCountRequest)
		if req.CountNumber.IsNull() {
			sl.ReportError(req.CountNumber, "count_number", "CountNumber", "notnull", "")
		}
	}, dto.UpdateCountRequest{})
	return v
}

// validationDetails maps each failing field to a readable message
func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = getValidationErrorMessage(fe)
	}
	return details
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "notnull":
		return err.Field() + " must not be null"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
