package domain

import "time"

// TransferTTL bounds the whole transfer, from initiation to confirmation.
const TransferTTL = 24 * time.Hour

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferAccepted  TransferStatus = "accepted"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
	TransferExpired   TransferStatus = "expired"
)

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferAccepted, TransferCompleted, TransferCancelled, TransferExpired:
		return true
	}
	return false
}

// Open reports whether the transfer can still move forward.
func (s TransferStatus) Open() bool {
	return s == TransferPending || s == TransferAccepted
}

type OwnershipTransfer struct {
	ID          string
	Code        string
	FromUser    string
	ToPhone     string
	ToUser      string // set on accept
	Status      TransferStatus
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// EffectiveStatus is the stored status, except that an open transfer reads
// as expired once now reaches ExpiresAt.
func (t OwnershipTransfer) EffectiveStatus(now time.Time) TransferStatus {
	if t.Status.Open() && !now.Before(t.ExpiresAt) {
		return TransferExpired
	}
	return t.Status
}
