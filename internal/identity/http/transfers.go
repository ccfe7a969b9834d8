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

type TransfersHandler struct {
	Transfers *service.TransferService
	Tokens    *service.TokenService
	Clock     clockx.Clock
}

func (h *TransfersHandler) writeTransfer(w http.ResponseWriter, t domain.OwnershipTransfer) {
	httpx.WriteJSON(w, http.StatusOK, toTransferInfo(t, clockx.Or(h.Clock).Now()))
}

// HandleValidate godoc
//
//	@Summary		Validate Transfer Code
//	@Description	Previews a pending transfer for its recipient. An unusable code answers 200 with valid=false.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.ValidateCodeRequest	true	"Transfer code"
//	@Success		200		{object}	identitysdk.TransferValidationResponse
//	@Router			/v1/transfers/validate [post].
func (h *TransfersHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ValidateCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	preview, err := h.Transfers.Validate(r.Context(), req.Code)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCode) {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, identitysdk.TransferValidationResponse{
			Error: printer(r).Sprintf(msgInvalidCode),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitysdk.TransferValidationResponse{
		Valid:        true,
		OwnerName:    preview.OwnerName,
		ToPhone:      preview.ToPhone,
		ExistingUser: preview.ExistingUser,
	})
}

// HandleRegister godoc
//
//	@Summary		Register Transfer Recipient
//	@Description	Creates an account for a recipient without one and signs it in. The phone must match the transfer.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.RegisterRecipientRequest	true	"Transfer code, account details and phone proof"
//	@Success		201		{object}	identitysdk.TokenResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse	"invalid_code"
//	@Failure		403		{object}	identitysdk.ErrorResponse	"phone_mismatch"
//	@Router			/v1/transfers/register [post].
func (h *TransfersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.RegisterRecipientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Transfers.RegisterRecipient(r.Context(), req.Code, service.AccountDraft{
		Name:       req.Name,
		Phone:      req.Phone,
		PhoneToken: req.PhoneToken,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	issueToken(w, r, h.Tokens, h.Clock, acc, "otp", http.StatusCreated)
}

// HandleInitiate godoc
//
//	@Summary		Initiate Transfer
//	@Description	Starts handing ownership to another phone number. Owner only, one open transfer at a time.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.InitiateTransferRequest	true	"Recipient phone"
//	@Success		201		{object}	identitysdk.TransferInfo
//	@Failure		403		{object}	identitysdk.ErrorResponse	"not_authorized"
//	@Failure		409		{object}	identitysdk.ErrorResponse	"conflict"
//	@Router			/v1/transfers/initiate [post].
func (h *TransfersHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.InitiateTransferRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.Transfers.Initiate(r.Context(), principal(r).AccountID, req.ToPhone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTransferInfo(t, clockx.Or(h.Clock).Now()))
}

// HandleAccept godoc
//
//	@Summary		Accept Transfer
//	@Description	The recipient accepts. Their phone must be the one the transfer was sent to.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.TransferCodeRequest	true	"Transfer code"
//	@Success		200		{object}	identitysdk.TransferInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse	"invalid_code"
//	@Failure		403		{object}	identitysdk.ErrorResponse	"phone_mismatch"
//	@Router			/v1/transfers/accept [post].
func (h *TransfersHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.TransferCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.Transfers.Accept(r.Context(), req.Code, principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTransfer(w, t)
}

// HandleConfirm godoc
//
//	@Summary		Confirm Transfer
//	@Description	The owner confirms with their PIN. Roles swap atomically: the owner becomes a partner and the recipient the owner.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.ConfirmTransferRequest	true	"Transfer code and owner PIN"
//	@Success		200		{object}	identitysdk.TransferInfo
//	@Failure		401		{object}	identitysdk.ErrorResponse	"incorrect_pin"
//	@Failure		429		{object}	identitysdk.ErrorResponse	"locked_out"
//	@Router			/v1/transfers/confirm [post].
func (h *TransfersHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ConfirmTransferRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.Transfers.Confirm(r.Context(), req.Code, principal(r), req.PIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTransfer(w, t)
}

// HandleCancel godoc
//
//	@Summary		Cancel Transfer
//	@Description	The owner cancels an open transfer. A finished transfer is left unchanged.
//	@Tags			Ownership Transfer
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.TransferCodeRequest	true	"Transfer code"
//	@Success		200		{object}	identitysdk.TransferInfo
//	@Router			/v1/transfers/cancel [post].
func (h *TransfersHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.TransferCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.Transfers.Cancel(r.Context(), req.Code, principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTransfer(w, t)
}

// HandleActive godoc
//
//	@Summary		Active Transfer
//	@Description	Returns the caller's open transfer.
//	@Tags			Ownership Transfer
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.TransferInfo
//	@Failure		404	{object}	identitysdk.ErrorResponse
//	@Router			/v1/transfers/active [get].
func (h *TransfersHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	t, err := h.Transfers.Active(r.Context(), principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTransfer(w, t)
}

// HandleGet godoc
//
//	@Summary		Get Transfer
//	@Description	Returns a transfer to one of its parties.
//	@Tags			Ownership Transfer
//	@Produce		json
//	@Security		BearerAuth
//	@Param			code	path		string	true	"Transfer code"
//	@Success		200		{object}	identitysdk.TransferInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse	"invalid_code"
//	@Router			/v1/transfers/{code} [get].
func (h *TransfersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Transfers.Get(r.Context(), r.PathValue("code"), principal(r).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTransfer(w, t)
}
