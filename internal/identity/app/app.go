package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tilldesk/internal/identity/http"
	"github.com/aussiebroadwan/tilldesk/internal/identity/phoneproof"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/notify"
	"github.com/aussiebroadwan/tilldesk/pkg/phoneauth"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application is the identity service with all of its dependencies.
type Application struct {
	cfg       Config
	logger    *slog.Logger
	logCloser io.Closer

	db         store.Store
	keyManager *jwtx.KeyManager
	notifier   *notify.Async
	proofs     *phoneproof.Provider

	accountService      *service.AccountService
	inviteService       *service.InviteService
	transferService     *service.TransferService
	sessionService      *service.SessionService
	tokenService        *service.TokenService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised.
func New(cfg Config) (*Application, error) {
	logger, closer := slogx.New(slogx.Config{
		Service: "identity-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
	app := &Application{cfg: cfg, logger: logger, logCloser: closer}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		NumKeys:  cfg.NumKeys,
	})
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = km
	app.logger.Info("ephemeral signing keys generated",
		"num_keys", km.NumSigners(),
		"issuer", cfg.Issuer,
	)

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, waits for queued notifications and
// closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.notifier.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return app.logCloser.Close()
}

// Handler exposes the router, mainly for tests that serve it with httptest.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initNotifier() *notify.Async {
	var next notify.Dispatcher = notify.LogDispatcher{}
	if app.cfg.NotifyWebhookURL != "" {
		next = notify.NewWebhookDispatcher(notify.WebhookConfig{
			URL:   app.cfg.NotifyWebhookURL,
			Token: app.cfg.NotifyWebhookToken,
		})
		app.logger.Info("webhook notifications enabled")
	} else {
		app.logger.Warn("no NOTIFY_WEBHOOK_URL set, notifications are only logged")
	}
	return notify.NewAsync(next, app.cfg.NotifyTimeout)
}

// initPhoneProof builds the built-in SMS code provider. Its codes are sent
// synchronously so a delivery failure reaches the caller.
func (app *Application) initPhoneProof() (*phoneproof.Provider, error) {
	signer, err := jwtx.NewEphemeralSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to create phone proof signer: %w", err)
	}

	var sender notify.CodeSender = notify.LogDispatcher{}
	if app.cfg.NotifyWebhookURL != "" {
		sender = notify.NewWebhookDispatcher(notify.WebhookConfig{
			URL:   app.cfg.NotifyWebhookURL,
			Token: app.cfg.NotifyWebhookToken,
		})
	}

	if app.cfg.PhoneProofDevEcho {
		if app.cfg.Env == "prod" {
			return nil, errors.New("PHONE_PROOF_DEV_ECHO cannot be enabled in prod")
		}
		app.logger.Warn("phone proof codes are echoed in responses")
	}

	return phoneproof.New(phoneproof.Config{
		Key:      []byte("phone-proof:" + cryptox.GetPepper()),
		Issuer:   app.cfg.PhoneProofIssuer,
		Audience: app.cfg.PhoneProofAudience,
		DevEcho:  app.cfg.PhoneProofDevEcho,
	}, signer, sender), nil
}

func (app *Application) initServices() error {
	if app.cfg.PhoneProofIssuer == "" || app.cfg.PhoneProofAudience == "" {
		app.logger.Warn("phone proof issuer or audience unset, every phone proof will be rejected")
	}
	phone := phoneauth.NewVerifier(phoneauth.Config{
		Issuer:   app.cfg.PhoneProofIssuer,
		Audience: app.cfg.PhoneProofAudience,
	})

	app.notifier = app.initNotifier()

	// Phone-only login needs proofs whose signature can be checked, which
	// only the local provider offers.
	var proofSignatures jwtx.Verifier
	if app.cfg.PhoneProofLocal {
		proofs, err := app.initPhoneProof()
		if err != nil {
			return err
		}
		proofSignatures, err = proofs.SignatureVerifier()
		if err != nil {
			return err
		}
		app.proofs = proofs
		app.logger.Info("local phone proof provider enabled",
			"issuer", app.cfg.PhoneProofIssuer,
			"audience", app.cfg.PhoneProofAudience,
		)
	}

	app.sessionService = &service.SessionService{
		Store:       app.db,
		Threshold:   app.cfg.PINMaxAttempts,
		Lockout:     app.cfg.PINLockout,
		IdleTimeout: app.cfg.SessionIdleTimeout,
		MaxIdle:     app.cfg.AccessTTL,
	}
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Sessions:   app.sessionService,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
	}
	app.accountService = &service.AccountService{
		Store:           app.db,
		Phone:           phone,
		ProofSignatures: proofSignatures,
	}
	app.inviteService = &service.InviteService{
		Store:    app.db,
		Phone:    phone,
		Notifier: app.notifier,
	}
	app.transferService = &service.TransferService{
		Store:    app.db,
		Phone:    phone,
		PINs:     app.sessionService,
		Notifier: app.notifier,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sessionService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.InviteService = app.inviteService
	router.TransferService = app.transferService
	router.SessionService = app.sessionService
	router.TokenService = app.tokenService
	router.PhoneProof = app.proofs // nil unless PHONE_PROOF_LOCAL
	router.RequestTimeout = app.cfg.RequestTimeout
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
