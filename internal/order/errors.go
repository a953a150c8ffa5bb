package order

import (
	"errors"
	"fmt"
)

var ErrSubmissionInProgress = errors.New("an order submission is already in progress")

const (
	ReasonMissingCustomerFields = "missing customer fields"
	ReasonEmptyCart             = "empty cart"
)

// ValidationError is a precondition failure detected before any request is
// sent. Nothing has changed; the caller can fix the input and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "order validation failed: " + e.Reason
}

// SubmissionError reports a transport failure or a non-success response
// from the ordering backend. The cart is left untouched.
type SubmissionError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	msg := "order submission failed: " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsSubmission(err error) bool {
	var s *SubmissionError
	return errors.As(err, &s)
}
