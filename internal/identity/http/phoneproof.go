package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/phoneproof"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

// PhoneProofHandler serves the built-in phone verification provider. It is
// only registered when the local provider is enabled.
type PhoneProofHandler struct {
	Provider *phoneproof.Provider
}

// HandleChallenge godoc
//
//	@Summary		Send Verification Code
//	@Description	Sends a 6 digit verification code to the phone. In dev echo mode the code is returned.
//	@Tags			Phone Proof
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.PhoneChallengeRequest	true	"Phone number"
//	@Success		200		{object}	identitysdk.PhoneChallengeResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse	"validation_error"
//	@Failure		502		{object}	identitysdk.ErrorResponse	"unavailable"
//	@Router			/v1/phone-proof/challenge [post].
func (h *PhoneProofHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.PhoneChallengeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ch, err := h.Provider.Challenge(r.Context(), req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitysdk.PhoneChallengeResponse{
		Phone:     ch.Phone,
		ExpiresAt: ch.ExpiresAt.Unix(),
		Code:      ch.Code,
	})
}

// HandleVerify godoc
//
//	@Summary		Verify Code
//	@Description	Exchanges a correct verification code for a phone-proof token.
//	@Tags			Phone Proof
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.PhoneVerifyRequest	true	"Phone number and code"
//	@Success		200		{object}	identitysdk.PhoneVerifyResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse	"phone_proof_invalid"
//	@Router			/v1/phone-proof/verify [post].
func (h *PhoneProofHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.PhoneVerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	proof, err := h.Provider.Verify(r.Context(), req.Phone, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitysdk.PhoneVerifyResponse{
		PhoneToken: proof.Token,
		ExpiresAt:  proof.ExpiresAt.Unix(),
	})
}
