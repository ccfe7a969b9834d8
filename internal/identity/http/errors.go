package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/phoneproof"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/phoneauth"
	"github.com/aussiebroadwan/tilldesk/pkg/pinguard"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// apiError is a mapped failure ready to be written.
type apiError struct {
	status int
	body   identitysdk.ErrorResponse
}

// mapError translates a service error into a status and localized body.
// Internal error text never reaches the client.
func mapError(r *http.Request, err error) apiError {
	p := printer(r)

	fail := func(status int, code, desc string) apiError {
		return apiError{status: status, body: identitysdk.ErrorResponse{Error: code, ErrorDescription: desc}}
	}

	var (
		field     *service.FieldError
		locked    *pinguard.LockedError
		incorrect *pinguard.IncorrectPINError
	)

	switch {
	case errors.Is(err, httpx.ErrBadJSON):
		return fail(http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, p.Sprintf(msgBadRequest))

	case errors.As(err, &field):
		e := fail(http.StatusBadRequest, identitysdk.ErrorCodeValidation, p.Sprintf(msgValidation, field.Field, field.Reason))
		e.body.Field = field.Field
		return e

	case errors.Is(err, service.ErrInvalidRole):
		return fail(http.StatusBadRequest, identitysdk.ErrorCodeValidation, p.Sprintf(msgInvalidRole))

	case errors.Is(err, service.ErrInvalidCode):
		return fail(http.StatusBadRequest, identitysdk.ErrorCodeInvalidCode, p.Sprintf(msgInvalidCode))

	case errors.Is(err, service.ErrPhoneMismatch):
		return fail(http.StatusForbidden, identitysdk.ErrorCodePhoneMismatch, p.Sprintf(msgPhoneMismatch))

	case errors.Is(err, service.ErrNotAuthorized):
		return fail(http.StatusForbidden, identitysdk.ErrorCodeNotAuthorized, p.Sprintf(msgNotAuthorized))

	case errors.Is(err, service.ErrOwnerExists):
		return fail(http.StatusConflict, identitysdk.ErrorCodeConflict, p.Sprintf(msgOwnerExists))

	case errors.Is(err, service.ErrTransferExists):
		return fail(http.StatusConflict, identitysdk.ErrorCodeConflict, p.Sprintf(msgTransferExists))

	case errors.Is(err, service.ErrPhoneTaken):
		return fail(http.StatusConflict, identitysdk.ErrorCodeConflict, p.Sprintf(msgPhoneTaken))

	case errors.As(err, &locked):
		e := fail(http.StatusTooManyRequests, identitysdk.ErrorCodeLockedOut, "")
		secs := ceilSeconds(locked.Remaining)
		e.body.ErrorDescription = p.Sprintf(msgLockedOut, secs)
		e.body.RetryAfter = secs
		return e

	case errors.As(err, &incorrect):
		return fail(http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN, p.Sprintf(msgIncorrectPIN, incorrect.AttemptsLeft))

	case errors.Is(err, service.ErrPINNotSet):
		return fail(http.StatusConflict, identitysdk.ErrorCodePINNotSet, p.Sprintf(msgPINNotSet))

	case errors.Is(err, service.ErrPINRequired), errors.Is(err, service.ErrSessionLocked),
		errors.Is(err, pinguard.ErrNotAuthenticated):
		return fail(http.StatusUnauthorized, identitysdk.ErrorCodePINRequired, p.Sprintf(msgPINRequired))

	case errors.Is(err, service.ErrUnknownSession):
		return fail(http.StatusUnauthorized, identitysdk.ErrorCodeInvalidToken, p.Sprintf(msgSessionEnded))

	case errors.Is(err, service.ErrPhoneProof), errors.Is(err, phoneproof.ErrInvalidCode):
		return fail(http.StatusUnauthorized, identitysdk.ErrorCodePhoneProof, p.Sprintf(msgPhoneProof, p.Sprintf(proofReason(err))))

	case errors.Is(err, phoneproof.ErrInvalidPhone):
		e := fail(http.StatusBadRequest, identitysdk.ErrorCodeValidation, p.Sprintf(msgValidation, "phone", "must be an international phone number"))
		e.body.Field = "phone"
		return e

	case errors.Is(err, phoneproof.ErrDelivery):
		return fail(http.StatusBadGateway, identitysdk.ErrorCodeUnavailable, p.Sprintf(msgProofDelivery))

	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(http.StatusUnauthorized, identitysdk.ErrorCodeInvalidLogin, p.Sprintf(msgInvalidLogin))

	case errors.Is(err, service.ErrNotFound):
		return fail(http.StatusNotFound, identitysdk.ErrorCodeNotFound, p.Sprintf(msgNotFound))

	default:
		return fail(http.StatusInternalServerError, identitysdk.ErrorCodeServerError, p.Sprintf(msgServerError))
	}
}

// proofReason names why a phone proof was refused.
func proofReason(err error) string {
	switch {
	case errors.Is(err, phoneauth.ErrExpired), errors.Is(err, jwtx.ErrExpired):
		return msgProofExpired
	case errors.Is(err, phoneauth.ErrIssuedInFuture):
		return msgProofFuture
	case errors.Is(err, phoneauth.ErrIssuer):
		return msgProofIssuer
	case errors.Is(err, phoneauth.ErrAudience):
		return msgProofAudience
	case errors.Is(err, phoneauth.ErrMissingPhone):
		return msgProofNoPhone
	case errors.Is(err, phoneauth.ErrPhoneMismatch):
		return msgProofWrongPhone
	case errors.Is(err, phoneproof.ErrInvalidCode):
		return msgInvalidCode
	default:
		return msgProofMalformed
	}
}

// writeError maps err and writes it. Server errors are logged here; every
// other failure was already logged by the service.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := mapError(r, err)
	if e.status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.Int("status", e.status),
			slog.Any("error", err),
		)
	}
	if e.body.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.body.RetryAfter))
	}
	httpx.WriteJSON(w, e.status, e.body)
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
