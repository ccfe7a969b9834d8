package identitysdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvite mints an invite code. Owner only, on an unlocked session.
func (s *Session) CreateInvite(ctx context.Context, req CreateInviteRequest) (*InviteInfo, error) {
	var out InviteInfo
	if err := s.call(ctx, http.MethodPost, "/v1/invites", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvites returns the owner's invites, newest first.
func (s *Session) ListInvites(ctx context.Context) (*ListInvitesResponse, error) {
	var out ListInvitesResponse
	if err := s.call(ctx, http.MethodGet, "/v1/invites", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeInvite deletes an invite by id.
func (s *Session) RevokeInvite(ctx context.Context, inviteID string) error {
	return s.call(ctx, http.MethodDelete, "/v1/invites/"+url.PathEscape(inviteID), nil, nil, http.StatusNoContent)
}

// RegenerateInvite replaces an unused invite with a fresh code.
func (s *Session) RegenerateInvite(ctx context.Context, inviteID string) (*InviteInfo, error) {
	var out InviteInfo
	path := "/v1/invites/" + url.PathEscape(inviteID) + "/regenerate"
	if err := s.call(ctx, http.MethodPost, path, nil, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
