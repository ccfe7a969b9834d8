package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	identityhttp "github.com/aussiebroadwan/tilldesk/internal/identity/http"
	"github.com/aussiebroadwan/tilldesk/internal/identity/phoneproof"
	"github.com/aussiebroadwan/tilldesk/internal/identity/service"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/notify"
	"github.com/aussiebroadwan/tilldesk/pkg/phoneauth"
)

const (
	ownerPhone     = "+61400000001"
	staffPhone     = "+61400000002"
	recipientPhone = "+61400000003"
)

func TestMain(m *testing.M) {
	cryptox.SetPepperFs(afero.NewMemMapFs())
	cryptox.SetPepperPath("/data/test-pepper")
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	router *identityhttp.Router
	proofs *phoneproof.Provider
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "identity.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "tilldesk-identity",
		Audience: []string{"tilldesk"},
	})
	require.NoError(t, err)

	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)
	proofs := phoneproof.New(phoneproof.Config{
		Key:      []byte("router-test"),
		Issuer:   "tilldesk-phone",
		Audience: "tilldesk",
		DevEcho:  true,
	}, signer, notify.LogDispatcher{})
	phone := phoneauth.NewVerifier(phoneauth.Config{Issuer: "tilldesk-phone", Audience: "tilldesk"})

	sessions := &service.SessionService{
		Store:       st,
		Threshold:   3,
		Lockout:     5 * time.Minute,
		IdleTimeout: 15 * time.Minute,
		MaxIdle:     12 * time.Hour,
	}

	proofSignatures, err := proofs.SignatureVerifier()
	require.NoError(t, err)

	r := identityhttp.NewRouter(km.KeySet, km.Verifier, "test", st, slog.New(slog.DiscardHandler))
	r.AccountService = &service.AccountService{Store: st, Phone: phone, ProofSignatures: proofSignatures}
	r.InviteService = &service.InviteService{Store: st, Phone: phone, Notifier: notify.LogDispatcher{}}
	r.TransferService = &service.TransferService{Store: st, Phone: phone, PINs: sessions, Notifier: notify.LogDispatcher{}}
	r.SessionService = sessions
	r.TokenService = &service.TokenService{
		KeyManager: km,
		Sessions:   sessions,
		Issuer:     "tilldesk-identity",
		Audience:   []string{"tilldesk"},
		AccessTTL:  time.Hour,
	}
	r.PhoneProof = proofs
	r.RequestTimeout = 5 * time.Second
	r.ApplyRoutes()

	return &harness{t: t, router: r, proofs: proofs}
}

// do sends a JSON request. Extra headers are given as name, value pairs.
func (h *harness) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) identitysdk.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	e := decode[identitysdk.ErrorResponse](t, rec)
	require.Equal(t, code, e.Error)
	require.NotEmpty(t, e.ErrorDescription)
	return e
}

// phoneToken obtains a phone proof from the local provider.
func (h *harness) phoneToken(phone string) string {
	h.t.Helper()
	ctx := context.Background()
	ch, err := h.proofs.Challenge(ctx, phone)
	require.NoError(h.t, err)
	proof, err := h.proofs.Verify(ctx, phone, ch.Code)
	require.NoError(h.t, err)
	return proof.Token
}

// owner registers the owner with PIN 1234 and unlocks the session.
func (h *harness) owner() identitysdk.TokenResponse {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Olivia Owner",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
		PIN:        "1234",
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	tok := decode[identitysdk.TokenResponse](h.t, rec)

	rec = h.do(http.MethodPost, "/v1/session/pin", tok.AccessToken, identitysdk.VerifyPINRequest{PIN: "1234"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return tok
}

func TestOwnerRegistration(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/v1/setup-status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[identitysdk.SetupStatusResponse](t, rec).SetupComplete)

	tok := h.owner()
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "owner", tok.Account.Role)
	require.Equal(t, ownerPhone, tok.Account.Phone)
	require.True(t, tok.Account.HasPIN)
	require.InDelta(t, 3600, tok.ExpiresIn, 2)

	rec = h.do(http.MethodGet, "/v1/setup-status", "", nil)
	require.True(t, decode[identitysdk.SetupStatusResponse](t, rec).SetupComplete)

	rec = h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Second Owner",
		Phone:      staffPhone,
		PhoneToken: h.phoneToken(staffPhone),
	})
	requireError(t, rec, http.StatusConflict, identitysdk.ErrorCodeConflict)
}

func TestRegistrationRejectsBadProof(t *testing.T) {
	h := newHarness(t)

	// A proof for another phone.
	rec := h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Mallory",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(staffPhone),
	})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePhoneProof)

	rec = h.do(http.MethodPost, "/v1/register/owner", "", map[string]string{"name": "x", "bogus": "y"})
	requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest)

	rec = h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
	})
	e := requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeValidation)
	require.Equal(t, "name", e.Field)
}

func TestInviteLifecycle(t *testing.T) {
	h := newHarness(t)
	owner := h.owner()

	rec := h.do(http.MethodPost, "/v1/invites", owner.AccessToken, identitysdk.CreateInviteRequest{Role: "employee"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[identitysdk.InviteInfo](t, rec)
	require.Len(t, inv.Code, 6)
	require.False(t, inv.Used)

	// Codes are matched case-insensitively.
	rec = h.do(http.MethodPost, "/v1/invites/validate", "", identitysdk.ValidateCodeRequest{Code: " " + inv.Code + " "})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[identitysdk.InviteValidationResponse](t, rec)
	require.True(t, v.Valid)
	require.Equal(t, "employee", v.Role)

	redeem := identitysdk.RedeemInviteRequest{
		Code:       inv.Code,
		Name:       "Sam Staff",
		Phone:      staffPhone,
		PhoneToken: h.phoneToken(staffPhone),
		PIN:        "5678",
	}
	rec = h.do(http.MethodPost, "/v1/invites/redeem", "", redeem)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	staff := decode[identitysdk.TokenResponse](t, rec)
	require.Equal(t, "employee", staff.Account.Role)
	require.Equal(t, owner.Account.ID, staff.Account.InvitedBy)

	// Single use.
	rec = h.do(http.MethodPost, "/v1/invites/validate", "", identitysdk.ValidateCodeRequest{Code: inv.Code})
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[identitysdk.InviteValidationResponse](t, rec).Valid)

	redeem.Phone = recipientPhone
	redeem.PhoneToken = h.phoneToken(recipientPhone)
	rec = h.do(http.MethodPost, "/v1/invites/redeem", "", redeem)
	requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeInvalidCode)

	rec = h.do(http.MethodGet, "/v1/invites", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[identitysdk.ListInvitesResponse](t, rec)
	require.Len(t, list.Invites, 1)
	require.True(t, list.Invites[0].Used)
	require.Equal(t, staff.Account.ID, list.Invites[0].UsedBy)

	rec = h.do(http.MethodGet, "/v1/accounts", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[identitysdk.ListAccountsResponse](t, rec).Accounts, 2)

	// Employees cannot invite, even when unlocked.
	rec = h.do(http.MethodPost, "/v1/session/pin", staff.AccessToken, identitysdk.VerifyPINRequest{PIN: "5678"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = h.do(http.MethodPost, "/v1/invites", staff.AccessToken, identitysdk.CreateInviteRequest{Role: "employee"})
	requireError(t, rec, http.StatusForbidden, identitysdk.ErrorCodeNotAuthorized)

	// The owner disables the employee; a disabled account cannot sign in.
	rec = h.do(http.MethodPatch, "/v1/accounts/"+staff.Account.ID+"/status", owner.AccessToken,
		identitysdk.UpdateStatusRequest{Status: "disabled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "disabled", decode[identitysdk.AccountInfo](t, rec).Status)

	rec = h.do(http.MethodPost, "/v1/login/phone", "", identitysdk.PhoneLoginRequest{
		Phone:      staffPhone,
		PhoneToken: h.phoneToken(staffPhone),
	})
	requireError(t, rec, http.StatusForbidden, identitysdk.ErrorCodeNotAuthorized)
}

func TestInviteRevokeAndRegenerate(t *testing.T) {
	h := newHarness(t)
	owner := h.owner()

	rec := h.do(http.MethodPost, "/v1/invites", owner.AccessToken, identitysdk.CreateInviteRequest{Role: "partner"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[identitysdk.InviteInfo](t, rec)

	rec = h.do(http.MethodPost, "/v1/invites/"+first.ID+"/regenerate", owner.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decode[identitysdk.InviteInfo](t, rec)
	require.NotEqual(t, first.Code, second.Code)
	require.Equal(t, "partner", second.Role)

	rec = h.do(http.MethodPost, "/v1/invites/validate", "", identitysdk.ValidateCodeRequest{Code: first.Code})
	require.False(t, decode[identitysdk.InviteValidationResponse](t, rec).Valid)

	rec = h.do(http.MethodDelete, "/v1/invites/"+second.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/v1/invites/validate", "", identitysdk.ValidateCodeRequest{Code: second.Code})
	require.False(t, decode[identitysdk.InviteValidationResponse](t, rec).Valid)

	rec = h.do(http.MethodPost, "/v1/invites", owner.AccessToken, identitysdk.CreateInviteRequest{Role: "owner"})
	requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeValidation)
}

func TestUnlockRequired(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Olivia Owner",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
		PIN:        "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tok := decode[identitysdk.TokenResponse](t, rec).AccessToken

	rec = h.do(http.MethodGet, "/v1/session", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pin_required", decode[identitysdk.SessionResponse](t, rec).State)

	rec = h.do(http.MethodPost, "/v1/invites", tok, identitysdk.CreateInviteRequest{Role: "employee"})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePINRequired)

	rec = h.do(http.MethodPost, "/v1/session/pin", tok, identitysdk.VerifyPINRequest{PIN: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "unlocked", decode[identitysdk.SessionResponse](t, rec).State)

	rec = h.do(http.MethodPost, "/v1/session/lock", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "locked", decode[identitysdk.SessionResponse](t, rec).State)

	rec = h.do(http.MethodGet, "/v1/accounts", tok, nil)
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePINRequired)
}

func TestPINLockout(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/v1/login/password", "", identitysdk.PasswordLoginRequest{Phone: ownerPhone, Password: "nope-nope"})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeInvalidLogin)

	rec = h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Olivia Owner",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
		Password:   "correct-horse",
		PIN:        "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/v1/login/password", "", identitysdk.PasswordLoginRequest{Phone: ownerPhone, Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok := decode[identitysdk.TokenResponse](t, rec).AccessToken

	rec = h.do(http.MethodPost, "/v1/session/pin", tok, identitysdk.VerifyPINRequest{PIN: "0000"})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN)

	rec = h.do(http.MethodPost, "/v1/session/pin", tok, identitysdk.VerifyPINRequest{PIN: "0000"}, "Accept-Language", "es-MX,es;q=0.9")
	e := requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN)
	require.Contains(t, e.ErrorDescription, "PIN incorrecto")

	rec = h.do(http.MethodPost, "/v1/session/pin", tok, identitysdk.VerifyPINRequest{PIN: "0000"})
	e = requireError(t, rec, http.StatusTooManyRequests, identitysdk.ErrorCodeLockedOut)
	require.Equal(t, 300, e.RetryAfter)
	require.Equal(t, "300", rec.Header().Get("Retry-After"))

	// The correct PIN is refused during the lockout.
	rec = h.do(http.MethodPost, "/v1/session/pin", tok, identitysdk.VerifyPINRequest{PIN: "1234"})
	requireError(t, rec, http.StatusTooManyRequests, identitysdk.ErrorCodeLockedOut)

	rec = h.do(http.MethodGet, "/v1/session", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[identitysdk.SessionResponse](t, rec)
	require.Equal(t, 3, st.FailedAttempts)
	require.NotZero(t, st.LockoutUntil)
}

func TestOwnershipTransfer(t *testing.T) {
	h := newHarness(t)
	owner := h.owner()

	rec := h.do(http.MethodPost, "/v1/transfers/initiate", owner.AccessToken, identitysdk.InitiateTransferRequest{ToPhone: recipientPhone})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode[identitysdk.TransferInfo](t, rec)
	require.Len(t, tr.Code, 8)
	require.Equal(t, "pending", tr.Status)

	// Timestamps share one encoding, epoch seconds.
	require.Positive(t, tr.CreatedAt)
	require.Equal(t, int64(24*60*60), tr.ExpiresAt-tr.CreatedAt)

	rec = h.do(http.MethodPost, "/v1/transfers/initiate", owner.AccessToken, identitysdk.InitiateTransferRequest{ToPhone: staffPhone})
	requireError(t, rec, http.StatusConflict, identitysdk.ErrorCodeConflict)

	rec = h.do(http.MethodPost, "/v1/transfers/validate", "", identitysdk.ValidateCodeRequest{Code: tr.Code})
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode[identitysdk.TransferValidationResponse](t, rec)
	require.True(t, preview.Valid)
	require.Equal(t, "Olivia Owner", preview.OwnerName)
	require.Equal(t, recipientPhone, preview.ToPhone)
	require.False(t, preview.ExistingUser)

	// Registering with another phone is refused.
	rec = h.do(http.MethodPost, "/v1/transfers/register", "", identitysdk.RegisterRecipientRequest{
		Code:       tr.Code,
		Name:       "Wrong Phone",
		Phone:      staffPhone,
		PhoneToken: h.phoneToken(staffPhone),
	})
	requireError(t, rec, http.StatusForbidden, identitysdk.ErrorCodePhoneMismatch)

	rec = h.do(http.MethodPost, "/v1/transfers/register", "", identitysdk.RegisterRecipientRequest{
		Code:       tr.Code,
		Name:       "Rita Recipient",
		Phone:      recipientPhone,
		PhoneToken: h.phoneToken(recipientPhone),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recipient := decode[identitysdk.TokenResponse](t, rec)
	require.Equal(t, "partner", recipient.Account.Role)

	rec = h.do(http.MethodPost, "/v1/transfers/accept", recipient.AccessToken, identitysdk.TransferCodeRequest{Code: tr.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "accepted", decode[identitysdk.TransferInfo](t, rec).Status)

	rec = h.do(http.MethodGet, "/v1/transfers/"+tr.Code, recipient.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, recipient.Account.ID, decode[identitysdk.TransferInfo](t, rec).ToUser)

	rec = h.do(http.MethodPost, "/v1/transfers/confirm", owner.AccessToken, identitysdk.ConfirmTransferRequest{Code: tr.Code, PIN: "9999"})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN)

	rec = h.do(http.MethodPost, "/v1/transfers/confirm", owner.AccessToken, identitysdk.ConfirmTransferRequest{Code: tr.Code, PIN: "1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[identitysdk.TransferInfo](t, rec)
	require.Equal(t, "completed", done.Status)
	require.NotZero(t, done.CompletedAt)

	rec = h.do(http.MethodGet, "/v1/me", recipient.AccessToken, nil)
	require.Equal(t, "owner", decode[identitysdk.AccountInfo](t, rec).Role)
	rec = h.do(http.MethodGet, "/v1/me", owner.AccessToken, nil)
	require.Equal(t, "partner", decode[identitysdk.AccountInfo](t, rec).Role)

	// Finished transfers cannot be cancelled and no longer show as active.
	rec = h.do(http.MethodPost, "/v1/transfers/cancel", owner.AccessToken, identitysdk.TransferCodeRequest{Code: tr.Code})
	requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeInvalidCode)
	rec = h.do(http.MethodGet, "/v1/transfers/active", owner.AccessToken, nil)
	requireError(t, rec, http.StatusNotFound, identitysdk.ErrorCodeNotFound)
}

func TestTransferCancel(t *testing.T) {
	h := newHarness(t)
	owner := h.owner()

	rec := h.do(http.MethodPost, "/v1/transfers/initiate", owner.AccessToken, identitysdk.InitiateTransferRequest{ToPhone: recipientPhone})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode[identitysdk.TransferInfo](t, rec)

	rec = h.do(http.MethodGet, "/v1/transfers/active", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, tr.ID, decode[identitysdk.TransferInfo](t, rec).ID)

	rec = h.do(http.MethodPost, "/v1/transfers/cancel", owner.AccessToken, identitysdk.TransferCodeRequest{Code: tr.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "cancelled", decode[identitysdk.TransferInfo](t, rec).Status)

	rec = h.do(http.MethodPost, "/v1/transfers/validate", "", identitysdk.ValidateCodeRequest{Code: tr.Code}, "Accept-Language", "es")
	v := decode[identitysdk.TransferValidationResponse](t, rec)
	require.False(t, v.Valid)
	require.Equal(t, "Este código no es válido o ha caducado.", v.Error)

	// A new transfer may start once the old one is closed.
	rec = h.do(http.MethodPost, "/v1/transfers/initiate", owner.AccessToken, identitysdk.InitiateTransferRequest{ToPhone: staffPhone})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestPhoneProofEndpoints(t *testing.T) {
	h := newHarness(t)
	h.owner()

	rec := h.do(http.MethodPost, "/v1/phone-proof/challenge", "", identitysdk.PhoneChallengeRequest{Phone: "+61 400 000 001"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ch := decode[identitysdk.PhoneChallengeResponse](t, rec)
	require.Equal(t, ownerPhone, ch.Phone)
	require.Len(t, ch.Code, 6)

	wrong := "000000"
	if ch.Code == wrong {
		wrong = "111111"
	}
	rec = h.do(http.MethodPost, "/v1/phone-proof/verify", "", identitysdk.PhoneVerifyRequest{Phone: ownerPhone, Code: wrong})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePhoneProof)

	rec = h.do(http.MethodPost, "/v1/phone-proof/verify", "", identitysdk.PhoneVerifyRequest{Phone: ownerPhone, Code: ch.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	proof := decode[identitysdk.PhoneVerifyResponse](t, rec)

	rec = h.do(http.MethodPost, "/v1/login/phone", "", identitysdk.PhoneLoginRequest{Phone: ownerPhone, PhoneToken: proof.PhoneToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "owner", decode[identitysdk.TokenResponse](t, rec).Account.Role)

	rec = h.do(http.MethodPost, "/v1/phone-proof/challenge", "", identitysdk.PhoneChallengeRequest{Phone: "0400"})
	requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeValidation)
}

func TestBearerAndLogout(t *testing.T) {
	h := newHarness(t)
	owner := h.owner()

	rec := h.do(http.MethodGet, "/v1/session", "", nil)
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeInvalidToken)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	rec = h.do(http.MethodGet, "/v1/session", "not-a-jwt", nil)
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeInvalidToken)

	rec = h.do(http.MethodPost, "/v1/transfers/initiate", owner.AccessToken, identitysdk.InitiateTransferRequest{ToPhone: recipientPhone})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode[identitysdk.TransferInfo](t, rec)

	rec = h.do(http.MethodPost, "/v1/session/logout", owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Every route behind a bearer token refuses the ended session.
	for _, c := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/v1/session", nil},
		{http.MethodGet, "/v1/me", nil},
		{http.MethodPost, "/v1/transfers/accept", identitysdk.TransferCodeRequest{Code: tr.Code}},
		{http.MethodPost, "/v1/transfers/cancel", identitysdk.TransferCodeRequest{Code: tr.Code}},
		{http.MethodPost, "/v1/transfers/confirm", identitysdk.ConfirmTransferRequest{Code: tr.Code, PIN: "1234"}},
		{http.MethodGet, "/v1/transfers/active", nil},
		{http.MethodGet, "/v1/transfers/" + tr.Code, nil},
		{http.MethodGet, "/v1/accounts", nil},
		{http.MethodPost, "/v1/session/logout", nil},
	} {
		rec = h.do(c.method, c.path, owner.AccessToken, c.body)
		requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeInvalidToken)
	}

	// The cancel above did not go through.
	rec = h.do(http.MethodPost, "/v1/transfers/validate", "", identitysdk.ValidateCodeRequest{Code: tr.Code})
	require.True(t, decode[identitysdk.TransferValidationResponse](t, rec).Valid)
}

func TestPhoneLoginRejectsForgedProof(t *testing.T) {
	h := newHarness(t)
	h.owner()

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":          "tilldesk-phone",
		"aud":          "tilldesk",
		"sub":          ownerPhone,
		"phone_number": ownerPhone,
		"iat":          now.Unix(),
		"exp":          now.Add(5 * time.Minute).Unix(),
	}

	// Right claims, secret picked by the caller.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("attacker-chosen-key"))
	require.NoError(t, err)
	rec := h.do(http.MethodPost, "/v1/login/phone", "", identitysdk.PhoneLoginRequest{Phone: ownerPhone, PhoneToken: forged})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePhoneProof)

	// Right algorithm, key the service never issued.
	stranger, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)
	foreign, err := stranger.Sign(claims)
	require.NoError(t, err)
	rec = h.do(http.MethodPost, "/v1/login/phone", "", identitysdk.PhoneLoginRequest{Phone: ownerPhone, PhoneToken: foreign})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodePhoneProof)

	rec = h.do(http.MethodPost, "/v1/login/phone", "", identitysdk.PhoneLoginRequest{Phone: ownerPhone, PhoneToken: h.phoneToken(ownerPhone)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPINLockoutSurvivesNewLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Olivia Owner",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
		Password:   "correct-horse",
		PIN:        "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	login := func(ip string) string {
		rec := h.do(http.MethodPost, "/v1/login/password", "", identitysdk.PasswordLoginRequest{Phone: ownerPhone, Password: "correct-horse"},
			"X-Forwarded-For", ip)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[identitysdk.TokenResponse](t, rec).AccessToken
	}

	first := login("203.0.113.1")
	for range 2 {
		rec = h.do(http.MethodPost, "/v1/session/pin", first, identitysdk.VerifyPINRequest{PIN: "0000"}, "X-Forwarded-For", "203.0.113.1")
		requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN)
	}
	rec = h.do(http.MethodPost, "/v1/session/pin", first, identitysdk.VerifyPINRequest{PIN: "0000"}, "X-Forwarded-For", "203.0.113.1")
	requireError(t, rec, http.StatusTooManyRequests, identitysdk.ErrorCodeLockedOut)

	// A new session from another address inherits the lockout.
	second := login("198.51.100.7")
	rec = h.do(http.MethodPost, "/v1/session/pin", second, identitysdk.VerifyPINRequest{PIN: "0000"}, "X-Forwarded-For", "198.51.100.7")
	requireError(t, rec, http.StatusTooManyRequests, identitysdk.ErrorCodeLockedOut)

	rec = h.do(http.MethodGet, "/v1/session", second, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, decode[identitysdk.SessionResponse](t, rec).FailedAttempts)
}

func TestSetPIN(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/v1/register/owner", "", identitysdk.RegisterOwnerRequest{
		Name:       "Olivia Owner",
		Phone:      ownerPhone,
		PhoneToken: h.phoneToken(ownerPhone),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tok := decode[identitysdk.TokenResponse](t, rec)
	require.False(t, tok.Account.HasPIN)

	rec = h.do(http.MethodPost, "/v1/session/pin", tok.AccessToken, identitysdk.VerifyPINRequest{PIN: "1234"})
	requireError(t, rec, http.StatusConflict, identitysdk.ErrorCodePINNotSet)

	rec = h.do(http.MethodPut, "/v1/session/pin", tok.AccessToken, identitysdk.SetPINRequest{NewPIN: "12a4"})
	e := requireError(t, rec, http.StatusBadRequest, identitysdk.ErrorCodeValidation)
	require.Equal(t, "new_pin", e.Field)

	rec = h.do(http.MethodPut, "/v1/session/pin", tok.AccessToken, identitysdk.SetPINRequest{NewPIN: "2468"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[identitysdk.SessionResponse](t, rec)
	require.Equal(t, "unlocked", st.State)
	require.True(t, st.HasPIN)

	rec = h.do(http.MethodPut, "/v1/session/pin", tok.AccessToken, identitysdk.SetPINRequest{CurrentPIN: "1111", NewPIN: "1357"})
	requireError(t, rec, http.StatusUnauthorized, identitysdk.ErrorCodeIncorrectPIN)

	rec = h.do(http.MethodPut, "/v1/session/pin", tok.AccessToken, identitysdk.SetPINRequest{CurrentPIN: "2468", NewPIN: "1357"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSystemEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[identitysdk.HealthResponse](t, rec).Status)

	rec = h.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[identitysdk.HealthResponse](t, rec)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	rec = h.do(http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jwks := decode[identitysdk.JWKSResponse](t, rec)
	require.Len(t, jwks.Keys, 3)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
}
