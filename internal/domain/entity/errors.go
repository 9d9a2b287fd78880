package entity

import (
	"errors"
	"fmt"
)

// UpstreamError is a structured failure returned by the fund API. Status is
// the upstream HTTP status (502 when the upstream gave none) and Payload is
// whatever diagnostic body came with it.
type UpstreamError struct {
	Status  int
	Message string
	Payload any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fund api error (status %d): %s", e.Status, e.Message)
}

// AsUpstreamError unwraps err into an *UpstreamError if one is in the chain.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// ValidationError rejects bad input before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// AsValidationError unwraps err into a *ValidationError if one is in the chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
