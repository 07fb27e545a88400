// Package validator turns ozzo-validation results into layered errors
package validator

import (
	"errors"

	"github.com/KOMKZ/go-yogan-confenv/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldsKey is the data key holding per-field messages
const FieldsKey = "fields"

// Validatable anything with a Validate method
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate and converts the result with Convert
func Validate(base *errcode.LayeredError, v Validatable) error {
	return Convert(base, v.Validate())
}

// Convert wraps err as base. Field errors reported by ozzo-validation are
// attached as base data under FieldsKey.
func Convert(base *errcode.LayeredError, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return base.Wrap(err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return base.WithData(FieldsKey, fields).Wrap(err)
}

// Fields returns the per-field messages attached by Convert
func Fields(err error) map[string]string {
	var le *errcode.LayeredError
	if !errors.As(err, &le) {
		return nil
	}
	fields, _ := le.Data()[FieldsKey].(map[string]string)
	return fields
}
