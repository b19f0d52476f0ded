package domain

import "strings"

// ValidationErrorType classifies a field-level validation failure
type ValidationErrorType string

const (
	ValueIsRequired        ValidationErrorType = "valueIsRequired"
	ValueIsReadonly        ValidationErrorType = "valueIsReadonly"
	InvalidDateRange       ValidationErrorType = "invalidDateRange"
	InvalidDictionaryValue ValidationErrorType = "invalidDictionaryValue"
	InvalidValueFormat     ValidationErrorType = "invalidValueFormat"
	DuplicatedRecord       ValidationErrorType = "duplicatedRecord"
)

// ValidationError is one failed field. Message is a catalog key, Args its
// positional parameters.
type ValidationError struct {
	Field   string              `json:"field"`
	Message string              `json:"message"`
	Args    []string            `json:"args,omitempty"`
	Type    ValidationErrorType `json:"type"`
}

// ValidationResult collects field errors. It is a value, not a Go error.
type ValidationResult struct {
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError appends a field error
func (r *ValidationResult) AddError(field, message string, typ ValidationErrorType, args ...string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Args: args, Type: typ})
}

// Add appends an already built error; nil is ignored
func (r *ValidationResult) Add(e *ValidationError) {
	if e != nil {
		r.Errors = append(r.Errors, *e)
	}
}

// IsError reports whether any field failed
func (r *ValidationResult) IsError() bool {
	return r != nil && len(r.Errors) > 0
}

// Message joins the message keys, one per failed field
func (r *ValidationResult) Message() string {
	keys := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		keys = append(keys, e.Message)
	}
	return strings.Join(keys, "; ")
}

// HTTPResult is the envelope every external call returns
type HTTPResult[T any] struct {
	IsError    bool   `json:"isError"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode"`
	Result     T      `json:"result,omitempty"`
}

// HTTPFailure builds an error envelope
func HTTPFailure[T any](status int, message string) HTTPResult[T] {
	return HTTPResult[T]{IsError: true, Error: message, StatusCode: status}
}

// HTTPSuccess builds a success envelope
func HTTPSuccess[T any](status int, result T) HTTPResult[T] {
	return HTTPResult[T]{StatusCode: status, Result: result}
}
