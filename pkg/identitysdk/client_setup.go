package identitysdk

import (
	"context"
	"net/http"
)

// SetupStatus reports whether the business already has its owner.
func (c *SDKClient) SetupStatus(ctx context.Context) (*SetupStatusResponse, error) {
	var out SetupStatusResponse
	if err := c.call(ctx, http.MethodGet, "/v1/setup-status", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterOwner creates the first owner and signs them in.
func (c *SDKClient) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*Session, error) {
	return c.signIn(ctx, "/v1/register/owner", req, http.StatusCreated)
}

// LoginWithPassword signs in with phone and password.
func (c *SDKClient) LoginWithPassword(ctx context.Context, phone, password string) (*Session, error) {
	req := PasswordLoginRequest{Phone: phone, Password: password}
	return c.signIn(ctx, "/v1/login/password", req, http.StatusOK)
}

// LoginWithPhone signs in with a phone-proof token. The service only accepts
// proofs from its own phone-proof endpoints for this.
func (c *SDKClient) LoginWithPhone(ctx context.Context, phone, phoneToken string) (*Session, error) {
	req := PhoneLoginRequest{Phone: phone, PhoneToken: phoneToken}
	return c.signIn(ctx, "/v1/login/phone", req, http.StatusOK)
}

func (c *SDKClient) signIn(ctx context.Context, path string, req any, expectedStatus int) (*Session, error) {
	var tok TokenResponse
	if err := c.call(ctx, http.MethodPost, path, "", req, &tok, expectedStatus); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}
