package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

var ErrDelivery = errors.New("notify: delivery failed")

type WebhookConfig struct {
	URL        string
	Token      string
	Attempts   uint
	Delay      time.Duration
	HTTPClient *http.Client
}

// WebhookDispatcher POSTs each Message as JSON to a messaging gateway.
// Network errors and 5xx responses are retried with backoff; 4xx responses
// are not.
type WebhookDispatcher struct {
	cfg WebhookConfig
}

func NewWebhookDispatcher(cfg WebhookConfig) *WebhookDispatcher {
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 200 * time.Millisecond
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookDispatcher{cfg: cfg}
}

func (d *WebhookDispatcher) SendInvite(ctx context.Context, phone, code, role string) error {
	return d.post(ctx, inviteMessage(phone, code, role))
}

func (d *WebhookDispatcher) SendTransferRequest(ctx context.Context, phone, fromOwnerName, code string) error {
	return d.post(ctx, transferRequestMessage(phone, fromOwnerName, code))
}

func (d *WebhookDispatcher) SendTransferAccepted(ctx context.Context, phone, recipientName string) error {
	return d.post(ctx, transferAcceptedMessage(phone, recipientName))
}

func (d *WebhookDispatcher) SendVerificationCode(ctx context.Context, phone, code string) error {
	return d.post(ctx, verificationMessage(phone, code))
}

func (d *WebhookDispatcher) post(ctx context.Context, msg Message) error {
	log := slogx.FromContext(ctx)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: encode message: %w", err)
	}

	err = retry.Do(
		func() error { return d.attempt(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(d.cfg.Attempts),
		retry.Delay(d.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("notification attempt failed",
				slog.String("kind", string(msg.Kind)),
				slog.String("to", phonex.Mask(msg.To)),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDelivery, msg.Kind, err)
	}
	return nil
}

func (d *WebhookDispatcher) attempt(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}

	resp, err := d.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	default:
		return retry.Unrecoverable(fmt.Errorf("gateway rejected message with %d", resp.StatusCode))
	}
}
