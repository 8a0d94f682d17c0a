package protocol

import (
	"errors"
	"fmt"
)

// ErrNoOffers is returned by offer selection when a negotiation round
// produced no usable offers. Terminal for the shopping attempt: the caller
// must re-run discovery and negotiation, it must not retry commit.
var ErrNoOffers = errors.New("no offers collected in negotiation round")

// AuthError reports a missing or invalid credential. Fatal to the single
// call; never retried.
type AuthError struct {
	Missing bool
	Msg     string
}

func (e *AuthError) Error() string {
	if e.Missing {
		return "auth: missing credential"
	}
	if e.Msg != "" {
		return fmt.Sprintf("auth: %s", e.Msg)
	}
	return "auth: invalid credential"
}

// ValidationError reports a malformed Intent or CommitRequest. The caller
// must fix the payload; retrying the same bytes cannot succeed.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("validation: %s", e.Msg)
}

// NotFoundError reports an unknown or already consumed resource: an offer
// that was never issued, already committed or expired, or a service type no
// registered supplier matches.
type NotFoundError struct {
	Kind string // "offer" or "supplier"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// SigningError reports a key or serialization failure while producing a
// signed task. Fail closed: a task must never be emitted unsigned.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
