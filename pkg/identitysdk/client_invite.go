package identitysdk

import (
	"context"
	"net/http"
)

// ValidateInvite checks a code before the user fills in the sign-up form. An
// unusable code is reported with Valid false rather than an error.
func (c *SDKClient) ValidateInvite(ctx context.Context, code string) (*InviteValidationResponse, error) {
	var out InviteValidationResponse
	err := c.call(ctx, http.MethodPost, "/v1/invites/validate", "", ValidateCodeRequest{Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemInvite creates the invited account and signs it in.
func (c *SDKClient) RedeemInvite(ctx context.Context, req RedeemInviteRequest) (*Session, error) {
	return c.signIn(ctx, "/v1/invites/redeem", req, http.StatusCreated)
}
