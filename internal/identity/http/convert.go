package http

import (
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

func toAccountInfo(a domain.Account) identitysdk.AccountInfo {
	return identitysdk.AccountInfo{
		ID:        a.ID,
		Name:      a.Name,
		Phone:     a.Phone,
		Role:      string(a.Role),
		Status:    string(a.Status),
		HasPIN:    a.HasPIN(),
		InvitedBy: a.InvitedBy,
		CreatedAt: a.CreatedAt.Unix(),
	}
}

func toInviteInfo(inv domain.InviteCode) identitysdk.InviteInfo {
	return identitysdk.InviteInfo{
		ID:        inv.ID,
		Code:      inv.Code,
		Role:      string(inv.Role),
		CreatedBy: inv.CreatedBy,
		UsedBy:    inv.UsedBy,
		Used:      inv.Used,
		ExpiresAt: inv.ExpiresAt.Unix(),
		CreatedAt: inv.CreatedAt.Unix(),
	}
}

// toTransferInfo reports the effective status, so an open transfer past its
// deadline reads as expired even before anything rewrites it.
func toTransferInfo(t domain.OwnershipTransfer, now time.Time) identitysdk.TransferInfo {
	info := identitysdk.TransferInfo{
		ID:        t.ID,
		Code:      t.Code,
		FromUser:  t.FromUser,
		ToPhone:   t.ToPhone,
		ToUser:    t.ToUser,
		Status:    string(t.EffectiveStatus(now)),
		ExpiresAt: t.ExpiresAt.Unix(),
		CreatedAt: t.CreatedAt.Unix(),
	}
	if t.AcceptedAt != nil {
		info.AcceptedAt = t.AcceptedAt.Unix()
	}
	if t.CompletedAt != nil {
		info.CompletedAt = t.CompletedAt.Unix()
	}
	return info
}

func toSessionResponse(s service.SessionState) identitysdk.SessionResponse {
	resp := identitysdk.SessionResponse{
		SessionID:      s.SessionID,
		AccountID:      s.AccountID,
		State:          s.State.String(),
		HasPIN:         s.HasPIN,
		FailedAttempts: s.FailedAttempts,
	}
	if !s.LockoutUntil.IsZero() {
		resp.LockoutUntil = s.LockoutUntil.Unix()
	}
	if s.Remembered != nil {
		resp.Remembered = &identitysdk.RememberedIdentity{
			AccountID: s.Remembered.AccountID,
			Name:      s.Remembered.Name,
			Email:     s.Remembered.Email,
		}
	}
	return resp
}

func toTokenResponse(t service.IssuedToken, now time.Time) identitysdk.TokenResponse {
	return identitysdk.TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(t.ExpiresAt.Sub(now).Round(time.Second) / time.Second),
		SessionID:   t.SessionID,
		Account:     toAccountInfo(t.Account),
	}
}
