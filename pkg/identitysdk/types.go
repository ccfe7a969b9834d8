package identitysdk

import (
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a stable machine-readable code (see the ErrorCode constants)
	Error string `json:"error"`

	// ErrorDescription is a localized human-readable message
	ErrorDescription string `json:"error_description"`

	// Field names the offending input for validation errors
	Field string `json:"field,omitempty"`

	// RetryAfter is the remaining lockout in seconds
	RetryAfter int `json:"retry_after,omitempty"`
}

// ============================================================================
// Account and Token Types
// ============================================================================

// AccountInfo is the public view of an account. Credential hashes are never
// exposed.
type AccountInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	HasPIN    bool   `json:"has_pin"`
	InvitedBy string `json:"invited_by,omitempty"`
	CreatedAt int64  `json:"created_at"` // epoch seconds
}

// TokenResponse is returned by every endpoint that signs the caller in.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "Bearer"
	ExpiresIn   int    `json:"expires_in"` // seconds
	SessionID   string `json:"session_id"`

	Account AccountInfo `json:"account"`
}

type SetupStatusResponse struct {
	SetupComplete bool `json:"setup_complete"`
}

// RegisterOwnerRequest bootstraps the first owner.
type RegisterOwnerRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PhoneToken string `json:"phone_token"`
	Password   string `json:"password,omitempty"`
	PIN        string `json:"pin,omitempty"`
}

type PasswordLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type PhoneLoginRequest struct {
	Phone      string `json:"phone"`
	PhoneToken string `json:"phone_token"`
}

type ListAccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"` // active or disabled
}

// UpdatePhoneRequest is the owner's admin phone change. No phone proof is
// taken for the new number.
type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

// ============================================================================
// Phone Proof Types
// ============================================================================

type PhoneChallengeRequest struct {
	Phone string `json:"phone"`
}

type PhoneChallengeResponse struct {
	Phone     string `json:"phone"`
	ExpiresAt int64  `json:"expires_at"`     // epoch seconds
	Code      string `json:"code,omitempty"` // dev echo only
}

type PhoneVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type PhoneVerifyResponse struct {
	PhoneToken string `json:"phone_token"`
	ExpiresAt  int64  `json:"expires_at"`
}

// ============================================================================
// Session Types
// ============================================================================

type RememberedIdentity struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
}

// SessionResponse is the PIN guard state of the caller's session.
type SessionResponse struct {
	SessionID      string              `json:"session_id"`
	AccountID      string              `json:"account_id"`
	State          string              `json:"state"` // no_pin_required, pin_required, unlocked, locked
	HasPIN         bool                `json:"has_pin"`
	FailedAttempts int                 `json:"failed_attempts"`
	LockoutUntil   int64               `json:"lockout_until,omitempty"` // epoch seconds
	Remembered     *RememberedIdentity `json:"remembered,omitempty"`
}

type VerifyPINRequest struct {
	PIN string `json:"pin"`
}

// SetPINRequest sets the first PIN or changes an existing one. CurrentPIN is
// required for a change.
type SetPINRequest struct {
	CurrentPIN string `json:"current_pin,omitempty"`
	NewPIN     string `json:"new_pin"`
}

// ============================================================================
// Invite Types
// ============================================================================

type ValidateCodeRequest struct {
	Code string `json:"code"`
}

type InviteValidationResponse struct {
	Valid bool   `json:"valid"`
	Role  string `json:"role,omitempty"`
	Error string `json:"error,omitempty"`
}

// RedeemInviteRequest creates an account from an invite code.
type RedeemInviteRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PhoneToken string `json:"phone_token"`
	Password   string `json:"password,omitempty"`
	PIN        string `json:"pin,omitempty"`
}

// CreateInviteRequest mints an invite. NotifyPhone is optional; when set the
// code is sent there.
type CreateInviteRequest struct {
	Role        string `json:"role"`
	NotifyPhone string `json:"notify_phone,omitempty"`
}

type InviteInfo struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Role      string `json:"role"`
	CreatedBy string `json:"created_by"`
	UsedBy    string `json:"used_by,omitempty"`
	Used      bool   `json:"used"`
	ExpiresAt int64  `json:"expires_at"` // epoch seconds
	CreatedAt int64  `json:"created_at"`
}

type ListInvitesResponse struct {
	Invites []InviteInfo `json:"invites"`
}

// ============================================================================
// Transfer Types
// ============================================================================

type InitiateTransferRequest struct {
	ToPhone string `json:"to_phone"`
}

type TransferValidationResponse struct {
	Valid        bool   `json:"valid"`
	OwnerName    string `json:"owner_name,omitempty"`
	ToPhone      string `json:"to_phone,omitempty"`
	ExistingUser bool   `json:"existing_user,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RegisterRecipientRequest creates the recipient's account from a transfer
// code. The new account starts as a partner.
type RegisterRecipientRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PhoneToken string `json:"phone_token"`
	Password   string `json:"password,omitempty"`
}

type TransferCodeRequest struct {
	Code string `json:"code"`
}

type ConfirmTransferRequest struct {
	Code string `json:"code"`
	PIN  string `json:"pin"`
}

type TransferInfo struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	FromUser    string `json:"from_user"`
	ToPhone     string `json:"to_phone"`
	ToUser      string `json:"to_user,omitempty"`
	Status      string `json:"status"`
	ExpiresAt   int64  `json:"expires_at"`
	AcceptedAt  int64  `json:"accepted_at,omitempty"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz. Only readyz sets Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the public key set for verifying access tokens.
type JWKSResponse jwtx.JWKS
