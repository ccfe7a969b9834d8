package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/phoneproof"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"

	_ "github.com/aussiebroadwan/tilldesk/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AccountService  *service.AccountService
	InviteService   *service.InviteService
	TransferService *service.TransferService
	SessionService  *service.SessionService
	TokenService    *service.TokenService
	PhoneProof      *phoneproof.Provider // Optional: only with the local provider enabled

	// RequestTimeout bounds each API request's context. Zero disables it.
	RequestTimeout time.Duration
	Clock          clockx.Clock
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSetup()
	r.registerLogin()
	r.registerPhoneProof()
	r.registerSession()
	r.registerInvites()
	r.registerAccounts()
	r.registerTransfers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tilldesk Identity Service API
//	@version		0.1.0
//	@description	Owner bootstrap, staff invites, PIN-guarded sessions and ownership transfer for a small-business point of sale.
//	@description
//	@description				Access tokens are EdDSA signed and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tilldesk
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// public wraps an unauthenticated endpoint.
func (r *Router) public(h http.HandlerFunc, limit httpx.Middleware) http.Handler {
	return httpx.Chain(h, limit, httpx.Timeout(r.RequestTimeout))
}

// authed wraps an endpoint that needs a bearer token of a session that has
// not logged out.
func (r *Router) authed(h http.HandlerFunc, limit httpx.Middleware) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		limit,
		requireSession(r.SessionService),
		httpx.Timeout(r.RequestTimeout),
	)
}

// unlocked wraps an endpoint that needs a bearer token and a PIN-unlocked
// session.
func (r *Router) unlocked(h http.HandlerFunc, limit httpx.Middleware) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		limit,
		requireUnlocked(r.SessionService),
		httpx.Timeout(r.RequestTimeout),
	)
}

func (r *Router) registerSetup() {
	h := &SetupHandler{Accounts: r.AccountService, Tokens: r.TokenService, Clock: r.Clock}

	r.Mux.Handle("GET /v1/setup-status", r.public(h.HandleStatus, httpx.RateLimitByIP(httpx.LenientLimit)))

	// Registration is strict: it is the only way to become owner without a transfer
	r.Mux.Handle("POST /v1/register/owner", r.public(h.HandleRegisterOwner, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerLogin() {
	h := &LoginHandler{Accounts: r.AccountService, Tokens: r.TokenService, Clock: r.Clock}

	r.Mux.Handle("POST /v1/login/password", r.public(h.HandlePassword, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/login/phone", r.public(h.HandlePhone, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerPhoneProof() {
	if r.PhoneProof == nil {
		return
	}
	h := &PhoneProofHandler{Provider: r.PhoneProof}

	// Limited by IP + phone so one client cannot text a number repeatedly
	r.Mux.Handle("POST /v1/phone-proof/challenge",
		r.public(h.HandleChallenge, httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "phone")))
	r.Mux.Handle("POST /v1/phone-proof/verify",
		r.public(h.HandleVerify, httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "phone")))
}

func (r *Router) registerSession() {
	h := &SessionHandler{Sessions: r.SessionService, Accounts: r.AccountService}

	r.Mux.Handle("GET /v1/session", r.authed(h.HandleState, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/me", r.authed(h.HandleMe, httpx.RateLimitByUser(httpx.LenientLimit)))

	// PIN entry is strict by account on top of the guard's own lockout
	r.Mux.Handle("POST /v1/session/pin", r.authed(h.HandleVerifyPIN, httpx.RateLimitByAccount(httpx.StrictLimit)))
	r.Mux.Handle("PUT /v1/session/pin", r.authed(h.HandleSetPIN, httpx.RateLimitByAccount(httpx.StrictLimit)))

	r.Mux.Handle("POST /v1/session/lock", r.authed(h.HandleLock, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/session/logout", r.authed(h.HandleLogout, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{Invites: r.InviteService, Tokens: r.TokenService, Clock: r.Clock}

	// Public code checks are strict by IP to slow down guessing
	r.Mux.Handle("POST /v1/invites/validate", r.public(h.HandleValidate, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/invites/redeem", r.public(h.HandleRedeem, httpx.RateLimitByIP(httpx.StrictLimit)))

	owner := httpx.RateLimitByUser(httpx.ModerateLimit)
	r.Mux.Handle("POST /v1/invites", r.unlocked(h.HandleCreate, owner))
	r.Mux.Handle("GET /v1/invites", r.unlocked(h.HandleList, owner))
	r.Mux.Handle("DELETE /v1/invites/{id}", r.unlocked(h.HandleRevoke, owner))
	r.Mux.Handle("POST /v1/invites/{id}/regenerate", r.unlocked(h.HandleRegenerate, owner))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Accounts: r.AccountService}

	limit := httpx.RateLimitByUser(httpx.ModerateLimit)
	r.Mux.Handle("GET /v1/accounts", r.unlocked(h.HandleList, limit))
	r.Mux.Handle("PATCH /v1/accounts/{id}/status", r.unlocked(h.HandleSetStatus, limit))
	r.Mux.Handle("PATCH /v1/accounts/{id}/phone", r.unlocked(h.HandleChangePhone, limit))
}

func (r *Router) registerTransfers() {
	h := &TransfersHandler{Transfers: r.TransferService, Tokens: r.TokenService, Clock: r.Clock}

	r.Mux.Handle("POST /v1/transfers/validate", r.public(h.HandleValidate, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/transfers/register", r.public(h.HandleRegister, httpx.RateLimitByIP(httpx.StrictLimit)))

	r.Mux.Handle("POST /v1/transfers/initiate", r.unlocked(h.HandleInitiate, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/transfers/accept", r.authed(h.HandleAccept, httpx.RateLimitByUser(httpx.ModerateLimit)))

	// Confirm carries the owner's PIN
	r.Mux.Handle("POST /v1/transfers/confirm", r.authed(h.HandleConfirm, httpx.RateLimitByAccount(httpx.StrictLimit)))

	r.Mux.Handle("POST /v1/transfers/cancel", r.authed(h.HandleCancel, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/transfers/active", r.authed(h.HandleActive, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/transfers/{code}", r.authed(h.HandleGet, httpx.RateLimitByUser(httpx.LenientLimit)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
