package domain

import "time"

// Role is an account's position in the business.
type Role string

const (
	RoleOwner    Role = "owner"
	RolePartner  Role = "partner"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RolePartner, RoleEmployee:
		return true
	}
	return false
}

// Invitable reports whether an invite may grant r. Ownership is only ever
// handed over through a transfer.
func (r Role) Invitable() bool {
	return r == RolePartner || r == RoleEmployee
}

// CanManageTeam reports whether r may list the team and change employee status.
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RolePartner
}

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusPending  AccountStatus = "pending"
	StatusDisabled AccountStatus = "disabled"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusDisabled:
		return true
	}
	return false
}

type Account struct {
	ID           string
	Name         string
	Phone        string // E.164, empty only before verification
	AuthEmail    string // <digits>@phone.local
	PINHash      string // empty until the first PIN is set
	PasswordHash string // argon2id PHC string
	Role         Role
	Status       AccountStatus
	InvitedBy    string // empty for the bootstrap owner
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) IsOwner() bool  { return a.Role == RoleOwner }
func (a Account) IsActive() bool { return a.Status == StatusActive }
func (a Account) HasPIN() bool   { return a.PINHash != "" }
