package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

type LoginHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
	Clock    clockx.Clock
}

// HandlePassword godoc
//
//	@Summary		Password Login
//	@Description	Signs in with phone number and password. The new session requires the PIN.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.PasswordLoginRequest	true	"Credentials"
//	@Success		200		{object}	identitysdk.TokenResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse	"invalid_credentials"
//	@Failure		403		{object}	identitysdk.ErrorResponse	"not_authorized (account disabled)"
//	@Router			/v1/login/password [post].
func (h *LoginHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.PasswordLoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.LoginPassword(r.Context(), req.Phone, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	issueToken(w, r, h.Tokens, h.Clock, acc, "pwd", http.StatusOK)
}

// HandlePhone godoc
//
//	@Summary		Phone Login
//	@Description	Signs in with a phone-proof token alone. Only proofs signed by the built-in provider are accepted.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.PhoneLoginRequest	true	"Phone and proof"
//	@Success		200		{object}	identitysdk.TokenResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse	"phone_proof_invalid or invalid_credentials"
//	@Router			/v1/login/phone [post].
func (h *LoginHandler) HandlePhone(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.PhoneLoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.LoginPhone(r.Context(), req.Phone, req.PhoneToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	issueToken(w, r, h.Tokens, h.Clock, acc, "otp", http.StatusOK)
}

// issueToken signs an access token for acc, opening its PIN session, and
// writes it with the given status.
func issueToken(w http.ResponseWriter, r *http.Request, tokens *service.TokenService, clock clockx.Clock, acc domain.Account, amr string, status int) {
	tok, err := tokens.Issue(r.Context(), acc, amr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, toTokenResponse(tok, clockx.Or(clock).Now()))
}
