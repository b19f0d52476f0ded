package application

import "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"

// Result is the user-facing outcome of an operation. A failed result is an
// expected business outcome, not a Go error.
type Result struct {
	IsError    bool                     `json:"isError"`
	Message    string                   `json:"message"`
	Args       []string                 `json:"args,omitempty"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
}

// Success builds a successful result
func Success(message string, args ...string) Result {
	return Result{Message: message, Args: args}
}

// Failure builds a rejected result
func Failure(message string, args ...string) Result {
	return Result{IsError: true, Message: message, Args: args}
}

// Invalid wraps field errors into a rejected result carrying the first message
func Invalid(v *domain.ValidationResult) Result {
	r := Result{IsError: true, Validation: v}
	if v.IsError() {
		r.Message = v.Errors[0].Message
		r.Args = v.Errors[0].Args
	}
	return r
}
