package identitysdk

import (
	"context"
	"net/http"
)

// ValidateTransfer previews a transfer code for its recipient.
func (c *SDKClient) ValidateTransfer(ctx context.Context, code string) (*TransferValidationResponse, error) {
	var out TransferValidationResponse
	err := c.call(ctx, http.MethodPost, "/v1/transfers/validate", "", ValidateCodeRequest{Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterTransferRecipient creates an account for a recipient who has none
// yet and signs it in. The account starts as a partner.
func (c *SDKClient) RegisterTransferRecipient(ctx context.Context, req RegisterRecipientRequest) (*Session, error) {
	return c.signIn(ctx, "/v1/transfers/register", req, http.StatusCreated)
}
