package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// Async runs each send of the wrapped Dispatcher in the background with its
// own timeout. Failures are logged and never returned, so a notification can
// not undo the state change that triggered it.
type Async struct {
	next    Dispatcher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

func NewAsync(next Dispatcher, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, timeout: timeout}
}

func (a *Async) SendInvite(ctx context.Context, phone, code, role string) error {
	a.dispatch(ctx, KindInvite, func(ctx context.Context) error {
		return a.next.SendInvite(ctx, phone, code, role)
	})
	return nil
}

func (a *Async) SendTransferRequest(ctx context.Context, phone, fromOwnerName, code string) error {
	a.dispatch(ctx, KindTransferRequest, func(ctx context.Context) error {
		return a.next.SendTransferRequest(ctx, phone, fromOwnerName, code)
	})
	return nil
}

func (a *Async) SendTransferAccepted(ctx context.Context, phone, recipientName string) error {
	a.dispatch(ctx, KindTransferAccepted, func(ctx context.Context) error {
		return a.next.SendTransferAccepted(ctx, phone, recipientName)
	})
	return nil
}

// dispatch detaches from the request context so the send outlives the
// response, keeping only the logger.
func (a *Async) dispatch(ctx context.Context, kind Kind, send func(context.Context) error) {
	log := slogx.FromContext(ctx)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		log.Warn("notification dropped after shutdown", slog.String("kind", string(kind)))
		return
	}

	a.wg.Go(func() {
		sendCtx, cancel := context.WithTimeout(slogx.WithContext(context.Background(), log), a.timeout)
		defer cancel()

		if err := send(sendCtx); err != nil {
			log.Error("notification failed", slog.String("kind", string(kind)), slog.Any("error", err))
		}
	})
}

// Close stops accepting sends and waits for in-flight ones.
func (a *Async) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
}
