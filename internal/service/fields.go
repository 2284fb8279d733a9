package service

import (
	"strings"

	"quill/internal/models"
	"quill/internal/validation"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
)

// fieldErrors collects per-field validation messages.
type fieldErrors struct {
	err *models.AppError
}

func (f *fieldErrors) add(field, message string) {
	if message == "" {
		return
	}
	if f.err == nil {
		f.err = models.NewValidationError("Invalid input.")
	}
	f.err.WithField(field, message)
}

// requireText checks a required string field.
func (f *fieldErrors) requireText(field string, value *string, max int) {
	switch {
	case value == nil:
		f.add(field, msgRequired)
	case strings.TrimSpace(*value) == "":
		f.add(field, msgBlank)
	case max > 0:
		f.add(field, validation.MaxLengthProblem(*value, max))
	}
}

// optionalText checks a string field that may be omitted or blank.
func (f *fieldErrors) optionalText(field string, value *string, max int) {
	if value != nil {
		f.add(field, validation.MaxLengthProblem(*value, max))
	}
}

// result returns the collected errors, or nil when there are none.
func (f *fieldErrors) result() error {
	if f.err == nil {
		return nil
	}
	return f.err
}
