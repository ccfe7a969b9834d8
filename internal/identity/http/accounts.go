package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

// AccountsHandler serves team management.
type AccountsHandler struct {
	Accounts *service.AccountService
}

// HandleList godoc
//
//	@Summary		List Team
//	@Description	Lists every account. Owner or partner only.
//	@Tags			Team
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.ListAccountsResponse
//	@Failure		401	{object}	identitysdk.ErrorResponse	"pin_required"
//	@Failure		403	{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.ListTeam(r.Context(), principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := identitysdk.ListAccountsResponse{Accounts: make([]identitysdk.AccountInfo, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountInfo(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSetStatus godoc
//
//	@Summary		Set Account Status
//	@Description	Enables or disables an employee. Owner or partner only.
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Account ID"
//	@Param			request	body		identitysdk.UpdateStatusRequest	true	"New status"
//	@Success		200		{object}	identitysdk.AccountInfo
//	@Failure		403		{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Router			/v1/accounts/{id}/status [patch].
func (h *AccountsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.UpdateStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.SetStatus(r.Context(), principal(r).AccountID, r.PathValue("id"), domain.AccountStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountInfo(acc))
}

// HandleChangePhone godoc
//
//	@Summary		Change Account Phone
//	@Description	Administrative phone change. Owner only.
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Account ID"
//	@Param			request	body		identitysdk.UpdatePhoneRequest	true	"New phone number"
//	@Success		200		{object}	identitysdk.AccountInfo
//	@Failure		403		{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Failure		409		{object}	identitysdk.ErrorResponse	"conflict"
//	@Router			/v1/accounts/{id}/phone [patch].
func (h *AccountsHandler) HandleChangePhone(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.UpdatePhoneRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.ChangePhone(r.Context(), principal(r).AccountID, r.PathValue("id"), req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountInfo(acc))
}
