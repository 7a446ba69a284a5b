// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package validation provides struct validation using
// go-playground/validator v10: a thread-safe singleton instance with
// custom validators for Eventus request shapes (tag slugs, interaction
// actions, content types, time-of-day buckets) and error translation
// into the API's {error, message} envelope.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation error.
type ValidationError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Error returns a human-readable error message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError is a collection of field validation errors.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

// Error implements the error interface.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var messages []string
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance with Eventus
// custom validators registered. Thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// tagslug: a value that is already a valid, policy-clean slug.
		//nolint:errcheck // registration only fails on empty tag names
		validate.RegisterValidation("tagslug", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v != "" && slug.Slugify(v) == v && !slug.IsStopWord(v)
		})

		// timeofday: one of the four bucket names.
		//nolint:errcheck
		validate.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
			return timeutil.ValidBucket(fl.Field().String())
		})

		// dayofweek: full lower-case day name.
		//nolint:errcheck
		validate.RegisterValidation("dayofweek", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
				return true
			}
			return false
		})

		// action: known interaction action.
		//nolint:errcheck
		validate.RegisterValidation("action", func(fl validator.FieldLevel) bool {
			_, ok := models.ActionWeights[fl.Field().String()]
			return ok
		})

		// contenttype: known interaction content type.
		//nolint:errcheck
		validate.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
			_, ok := models.KnownContentTypes[fl.Field().String()]
			return ok
		})
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success, or *RequestValidationError listing each
// failing field.
func ValidateStruct(s interface{}) *RequestValidationError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"datetime":    "%s must be a valid date/time in RFC3339 format",
	"base64":      "%s must be valid base64 encoded",
	"tagslug":     "%s must be a lower-case tag slug of at least 4 characters",
	"timeofday":   "%s must be one of: morning, afternoon, evening, night",
	"dayofweek":   "%s must be a lower-case day name",
	"action":      "%s must be a known interaction action",
	"contenttype": "%s must be a known content type",
}

// errorMessageWithParam maps validation tags to templates that include
// the tag parameter.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable
// message matching the API's existing error style.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
