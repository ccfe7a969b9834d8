// Package notify delivers WhatsApp-style messages for the identity flows.
// Delivery is best effort: callers never roll back state because a message
// failed to send.
package notify

//go:generate mockgen -source=notify.go -destination=mock_notify.go -package=notify

import (
	"context"
	"fmt"
)

// Dispatcher sends the notifications triggered by invite and transfer flows.
type Dispatcher interface {
	SendInvite(ctx context.Context, phone, code, role string) error
	SendTransferRequest(ctx context.Context, phone, fromOwnerName, code string) error
	SendTransferAccepted(ctx context.Context, phone, recipientName string) error
}

// CodeSender delivers one-time phone verification codes.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// Kind identifies a message template.
type Kind string

const (
	KindInvite           Kind = "invite"
	KindTransferRequest  Kind = "transfer_request"
	KindTransferAccepted Kind = "transfer_accepted"
	KindVerification     Kind = "verification_code"
)

// Message is the rendered form of a notification.
type Message struct {
	Kind   Kind              `json:"kind"`
	To     string            `json:"to"`
	Text   string            `json:"text"`
	Params map[string]string `json:"params,omitempty"`
}

func inviteMessage(phone, code, role string) Message {
	return Message{
		Kind:   KindInvite,
		To:     phone,
		Text:   fmt.Sprintf("You have been invited to join the team as %s. Your invite code is %s. It expires in 7 days.", role, code),
		Params: map[string]string{"code": code, "role": role},
	}
}

func transferRequestMessage(phone, fromOwnerName, code string) Message {
	return Message{
		Kind:   KindTransferRequest,
		To:     phone,
		Text:   fmt.Sprintf("%s wants to transfer ownership of the business to you. Your transfer code is %s. It expires in 24 hours.", fromOwnerName, code),
		Params: map[string]string{"code": code, "from": fromOwnerName},
	}
}

func transferAcceptedMessage(phone, recipientName string) Message {
	return Message{
		Kind:   KindTransferAccepted,
		To:     phone,
		Text:   fmt.Sprintf("%s accepted your ownership transfer. Confirm it with your PIN to complete the handover.", recipientName),
		Params: map[string]string{"recipient": recipientName},
	}
}

func verificationMessage(phone, code string) Message {
	return Message{
		Kind:   KindVerification,
		To:     phone,
		Text:   fmt.Sprintf("Your verification code is %s.", code),
		Params: map[string]string{"code": code},
	}
}
