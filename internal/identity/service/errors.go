package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCode        = errors.New("invalid code")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrPhoneMismatch      = errors.New("phone number does not match")
	ErrOwnerExists        = errors.New("an owner is already registered")
	ErrTransferExists     = errors.New("an ownership transfer is already in progress")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrPhoneProof         = errors.New("phone verification failed")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")

	// ErrPINRequired means the session has not verified its PIN yet.
	ErrPINRequired = errors.New("PIN required")
	// ErrSessionLocked means the session was locked by idle timeout or on
	// request and must re-enter the PIN.
	ErrSessionLocked = errors.New("session locked")
	// ErrUnknownSession means the sid is not held by this process, e.g.
	// after a restart or logout.
	ErrUnknownSession = errors.New("unknown session")
)

// FieldError is a validation failure on one input field. It matches
// ErrValidation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

func fieldErr(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
