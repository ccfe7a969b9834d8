package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

// SessionHandler serves the caller's own session and account.
type SessionHandler struct {
	Sessions *service.SessionService
	Accounts *service.AccountService
}

// HandleState godoc
//
//	@Summary		Session State
//	@Description	Returns the PIN guard state of the caller's session after applying the idle lock.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.SessionResponse
//	@Failure		401	{object}	identitysdk.ErrorResponse	"invalid_token"
//	@Router			/v1/session [get].
func (h *SessionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	st, err := h.Sessions.State(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(st))
}

// HandleVerifyPIN godoc
//
//	@Summary		Verify PIN
//	@Description	Unlocks the session. Three wrong PINs lock PIN entry for five minutes.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.VerifyPINRequest	true	"4 digit PIN"
//	@Success		200		{object}	identitysdk.SessionResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse	"incorrect_pin"
//	@Failure		409		{object}	identitysdk.ErrorResponse	"pin_not_set"
//	@Failure		429		{object}	identitysdk.ErrorResponse	"locked_out, with retry_after"
//	@Router			/v1/session/pin [post].
func (h *SessionHandler) HandleVerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.VerifyPINRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := h.Sessions.VerifyPIN(r.Context(), principal(r), req.PIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(st))
}

// HandleSetPIN godoc
//
//	@Summary		Set PIN
//	@Description	Sets the first PIN, or changes it when current_pin is correct. Unlocks the session.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.SetPINRequest	true	"Current and new PIN"
//	@Success		200		{object}	identitysdk.SessionResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	identitysdk.ErrorResponse	"incorrect_pin"
//	@Failure		429		{object}	identitysdk.ErrorResponse	"locked_out"
//	@Router			/v1/session/pin [put].
func (h *SessionHandler) HandleSetPIN(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.SetPINRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	st, err := h.Sessions.SetPIN(r.Context(), principal(r), req.CurrentPIN, req.NewPIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(st))
}

// HandleLock godoc
//
//	@Summary		Lock Session
//	@Description	Requires the PIN again without signing out.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.SessionResponse
//	@Router			/v1/session/lock [post].
func (h *SessionHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	st, err := h.Sessions.Lock(principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(st))
}

// HandleLogout godoc
//
//	@Summary		Log Out
//	@Description	Ends the session. Its access token is refused afterwards.
//	@Tags			Session
//	@Security		BearerAuth
//	@Success		204
//	@Router			/v1/session/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(principal(r)); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe godoc
//
//	@Summary		Current Account
//	@Description	Returns the caller's account as currently stored.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.AccountInfo
//	@Failure		404	{object}	identitysdk.ErrorResponse
//	@Router			/v1/me [get].
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Accounts.Get(r.Context(), principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountInfo(acc))
}
