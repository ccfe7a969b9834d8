package identitysdk

import (
	"context"
	"net/http"
	"net/url"
)

// InitiateTransfer starts handing the business to toPhone. Owner only, on an
// unlocked session.
func (s *Session) InitiateTransfer(ctx context.Context, toPhone string) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodPost, "/v1/transfers/initiate", InitiateTransferRequest{ToPhone: toPhone}, http.StatusCreated)
}

// AcceptTransfer is called by the recipient with the code they were sent.
func (s *Session) AcceptTransfer(ctx context.Context, code string) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodPost, "/v1/transfers/accept", TransferCodeRequest{Code: code}, http.StatusOK)
}

// ConfirmTransfer completes an accepted transfer. The owner re-enters their
// PIN, which counts against the session's lockout.
func (s *Session) ConfirmTransfer(ctx context.Context, code, pin string) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodPost, "/v1/transfers/confirm", ConfirmTransferRequest{Code: code, PIN: pin}, http.StatusOK)
}

// CancelTransfer withdraws an open transfer. Only the initiating owner may
// cancel.
func (s *Session) CancelTransfer(ctx context.Context, code string) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodPost, "/v1/transfers/cancel", TransferCodeRequest{Code: code}, http.StatusOK)
}

// ActiveTransfer returns the caller's open transfer. An *APIError with
// ErrorCodeNotFound means there is none.
func (s *Session) ActiveTransfer(ctx context.Context) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodGet, "/v1/transfers/active", nil, http.StatusOK)
}

// GetTransfer looks a transfer up by code.
func (s *Session) GetTransfer(ctx context.Context, code string) (*TransferInfo, error) {
	return s.transfer(ctx, http.MethodGet, "/v1/transfers/"+url.PathEscape(code), nil, http.StatusOK)
}

func (s *Session) transfer(ctx context.Context, method, path string, in any, expectedStatus int) (*TransferInfo, error) {
	var out TransferInfo
	if err := s.call(ctx, method, path, in, &out, expectedStatus); err != nil {
		return nil, err
	}
	return &out, nil
}
