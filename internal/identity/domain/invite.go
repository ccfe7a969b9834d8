package domain

import "time"

// InviteTTL is how long a freshly issued invite code can be redeemed.
const InviteTTL = 7 * 24 * time.Hour

type InviteCode struct {
	ID        string
	Code      string
	Role      Role
	CreatedBy string
	UsedBy    string // empty until redeemed
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsValid reports whether the invite can still be redeemed at now.
func (i InviteCode) IsValid(now time.Time) bool {
	return !i.Used && i.ExpiresAt.After(now)
}
