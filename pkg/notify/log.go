package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// LogDispatcher writes messages to the request logger instead of sending
// them. It is the default when no gateway is configured.
type LogDispatcher struct{}

func (LogDispatcher) SendInvite(ctx context.Context, phone, code, role string) error {
	return logMessage(ctx, inviteMessage(phone, code, role))
}

func (LogDispatcher) SendTransferRequest(ctx context.Context, phone, fromOwnerName, code string) error {
	return logMessage(ctx, transferRequestMessage(phone, fromOwnerName, code))
}

func (LogDispatcher) SendTransferAccepted(ctx context.Context, phone, recipientName string) error {
	return logMessage(ctx, transferAcceptedMessage(phone, recipientName))
}

func (LogDispatcher) SendVerificationCode(ctx context.Context, phone, code string) error {
	return logMessage(ctx, verificationMessage(phone, code))
}

func logMessage(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", phonex.Mask(msg.To)),
		slog.String("text", msg.Text),
	)
	return nil
}
