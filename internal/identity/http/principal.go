package http

import (
	"net/http"

	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
)

// principal builds the caller from the verified access token claims. Only
// valid behind httpx.AuthnMiddleware.
func principal(r *http.Request) service.Principal {
	claims, _ := httpx.ClaimsFrom(r.Context())
	return service.Principal{
		AccountID: claims.Subject,
		SessionID: claims.SID,
		Name:      claims.Name,
		Phone:     claims.Phone,
	}
}

// requireSession rejects tokens whose session has logged out. Must run
// after httpx.AuthnMiddleware.
func requireSession(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sessions.RequireLive(principal(r)); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireUnlocked rejects requests whose session has not verified its PIN,
// or has been locked since. Must run after httpx.AuthnMiddleware.
func requireUnlocked(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sessions.RequireUnlocked(principal(r)); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
