package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

type InvitesHandler struct {
	Invites *service.InviteService
	Tokens  *service.TokenService
	Clock   clockx.Clock
}

// HandleValidate godoc
//
//	@Summary		Validate Invite Code
//	@Description	Checks an invite code without consuming it. An unusable code answers 200 with valid=false.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.ValidateCodeRequest	true	"Invite code"
//	@Success		200		{object}	identitysdk.InviteValidationResponse
//	@Router			/v1/invites/validate [post].
func (h *InvitesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ValidateCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	role, err := h.Invites.ValidateInvite(r.Context(), req.Code)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCode) {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, identitysdk.InviteValidationResponse{
			Error: printer(r).Sprintf(msgInvalidCode),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitysdk.InviteValidationResponse{Valid: true, Role: string(role)})
}

// HandleRedeem godoc
//
//	@Summary		Redeem Invite
//	@Description	Creates an account with the invite's role and signs it in. Each code works once.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.RedeemInviteRequest	true	"Invite code, account details and phone proof"
//	@Success		201		{object}	identitysdk.TokenResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse	"invalid_code or validation_error"
//	@Failure		401		{object}	identitysdk.ErrorResponse	"phone_proof_invalid"
//	@Failure		409		{object}	identitysdk.ErrorResponse	"conflict"
//	@Router			/v1/invites/redeem [post].
func (h *InvitesHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.RedeemInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Invites.RedeemInvite(r.Context(), req.Code, service.AccountDraft{
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

// HandleCreate godoc
//
//	@Summary		Create Invite
//	@Description	Mints a 6 character invite code valid for 7 days. Owner only.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.CreateInviteRequest	true	"Role and optional phone to notify"
//	@Success		201		{object}	identitysdk.InviteInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse	"validation_error"
//	@Failure		403		{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Router			/v1/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.CreateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Invites.CreateInvite(r.Context(), principal(r).AccountID, domain.Role(req.Role), req.NotifyPhone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInviteInfo(inv))
}

// HandleList godoc
//
//	@Summary		List Invites
//	@Description	Lists invites created by the caller, newest first. Owner only.
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.ListInvitesResponse
//	@Router			/v1/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	invites, err := h.Invites.ListInvites(r.Context(), principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := identitysdk.ListInvitesResponse{Invites: make([]identitysdk.InviteInfo, 0, len(invites))}
	for _, inv := range invites {
		resp.Invites = append(resp.Invites, toInviteInfo(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRevoke godoc
//
//	@Summary		Revoke Invite
//	@Description	Deletes an invite. Owner only.
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Invite ID"
//	@Success		204
//	@Failure		403	{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Router			/v1/invites/{id} [delete].
func (h *InvitesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.Invites.RevokeInvite(r.Context(), principal(r).AccountID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerate godoc
//
//	@Summary		Regenerate Invite
//	@Description	Replaces an unused invite with a fresh code and a new 7 day window. Owner only.
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Invite ID"
//	@Success		201	{object}	identitysdk.InviteInfo
//	@Failure		400	{object}	identitysdk.ErrorResponse	"invalid_code (already used)"
//	@Router			/v1/invites/{id}/regenerate [post].
func (h *InvitesHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invites.RegenerateInvite(r.Context(), principal(r).AccountID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInviteInfo(inv))
}
