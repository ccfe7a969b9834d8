package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

type SetupHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
	Clock    clockx.Clock
}

// HandleStatus godoc
//
//	@Summary		Setup Status
//	@Description	Reports whether the first owner has registered
//	@Tags			Setup
//	@Produce		json
//	@Success		200	{object}	identitysdk.SetupStatusResponse
//	@Failure		500	{object}	identitysdk.ErrorResponse
//	@Router			/v1/setup-status [get].
func (h *SetupHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	done, err := h.Accounts.SetupComplete(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitysdk.SetupStatusResponse{SetupComplete: done})
}

// HandleRegisterOwner godoc
//
//	@Summary		Register Owner
//	@Description	Creates the business owner. Only succeeds while no owner exists.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.RegisterOwnerRequest	true	"Owner details and phone proof"
//	@Success		201		{object}	identitysdk.TokenResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	identitysdk.ErrorResponse	"phone_proof_invalid"
//	@Failure		409		{object}	identitysdk.ErrorResponse	"conflict"
//	@Router			/v1/register/owner [post].
func (h *SetupHandler) HandleRegisterOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req identitysdk.RegisterOwnerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.RegisterOwner(ctx, service.AccountDraft{
		Name:       req.Name,
		Phone:      req.Phone,
		PhoneToken: req.PhoneToken,
		Password:   req.Password,
		PIN:        req.PIN,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	issueToken(w, r, h.Tokens, h.Clock, acc, "otp", http.StatusCreated)
}
