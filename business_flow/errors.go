// Package businessflow contains the core business logic and use cases for the count table
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	ErrCountNotFound      = errors.New("count not found")
	ErrCountNumberNull    = errors.New("count_number must not be null")
	ErrCountNumberMissing = errors.New("count_number is required")
	ErrDescriptionTooLong = errors.New("description must be at most 255 characters")
	ErrInvalidPagination  = errors.New("skip and limit must be non-negative")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCountNotFound(err error) bool {
	return errors.Is(err, ErrCountNotFound)
}

// IsValidationError reports errors caused by the caller's input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCountNumberNull) ||
		errors.Is(err, ErrCountNumberMissing) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidPagination)
}
