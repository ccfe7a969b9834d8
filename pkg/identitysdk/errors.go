package identitysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes written in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeValidation     = "validation_error"
	ErrorCodeInvalidCode    = "invalid_code"
	ErrorCodeNotAuthorized  = "not_authorized"
	ErrorCodePhoneMismatch  = "phone_mismatch"
	ErrorCodeConflict       = "conflict"
	ErrorCodeIncorrectPIN   = "incorrect_pin"
	ErrorCodeLockedOut      = "locked_out"
	ErrorCodePINRequired    = "pin_required"
	ErrorCodePINNotSet      = "pin_not_set"
	ErrorCodePhoneProof     = "phone_proof_invalid"
	ErrorCodeInvalidLogin   = "invalid_credentials"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeRateLimited    = "rate_limit_exceeded"
	ErrorCodeServerError    = "server_error"
	ErrorCodeUnavailable    = "unavailable"
)

// APIError is a non-2xx response from the identity service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Field       string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by code, so callers can write
// errors.Is(err, &identitysdk.APIError{Code: identitysdk.ErrorCodeLockedOut}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Field:       errResp.Field,
			RetryAfter:  time.Duration(errResp.RetryAfter) * time.Second,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
