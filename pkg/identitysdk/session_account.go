package identitysdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListAccounts returns every account of the business. Owners and partners
// may list.
func (s *Session) ListAccounts(ctx context.Context) (*ListAccountsResponse, error) {
	var out ListAccountsResponse
	if err := s.call(ctx, http.MethodGet, "/v1/accounts", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAccountStatus enables or disables an employee.
func (s *Session) SetAccountStatus(ctx context.Context, accountID, status string) (*AccountInfo, error) {
	var out AccountInfo
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/status"
	if err := s.call(ctx, http.MethodPatch, path, UpdateStatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeAccountPhone moves an account to a new phone number. Owner only.
func (s *Session) ChangeAccountPhone(ctx context.Context, accountID, phone string) (*AccountInfo, error) {
	var out AccountInfo
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/phone"
	if err := s.call(ctx, http.MethodPatch, path, UpdatePhoneRequest{Phone: phone}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
