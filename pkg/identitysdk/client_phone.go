package identitysdk

import (
	"context"
	"net/http"
)

// RequestPhoneCode asks the built-in provider to text a verification code.
// The endpoint only exists when the server runs with PHONE_PROOF_LOCAL.
func (c *SDKClient) RequestPhoneCode(ctx context.Context, phone string) (*PhoneChallengeResponse, error) {
	var out PhoneChallengeResponse
	err := c.call(ctx, http.MethodPost, "/v1/phone-proof/challenge", "", PhoneChallengeRequest{Phone: phone}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPhoneCode exchanges a texted code for a phone-proof token.
func (c *SDKClient) VerifyPhoneCode(ctx context.Context, phone, code string) (*PhoneVerifyResponse, error) {
	var out PhoneVerifyResponse
	err := c.call(ctx, http.MethodPost, "/v1/phone-proof/verify", "", PhoneVerifyRequest{Phone: phone, Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
