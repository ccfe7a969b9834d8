package httpx_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tilldesk/pkg/httpx"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Real-IP", "203.0.113.2")
	require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
	require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
}

func TestJSONFieldKeyExtractorRestoresBody(t *testing.T) {
	body := `{"code":" ab12cd ","extra":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	require.Equal(t, "AB12CD", httpx.JSONFieldKeyExtractor("code")(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.Equal(t, body, string(rest))

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope"))
	require.Empty(t, httpx.JSONFieldKeyExtractor("code")(bad))
}

func TestRateLimitMiddleware(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	h := httpx.RateLimitByIP(config)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/invites/validate", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, send("10.0.0.1").Code, "request %d", i+1)
	}

	rec := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body httpx.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "rate_limit_exceeded", body.Error)
	require.GreaterOrEqual(t, body.RetryAfter, 1)

	// Other clients have their own bucket.
	require.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := httpx.RateLimitByIPAndJSONField(config, "phone")(okHandler())

	send := func(phone string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone":"`+phone+`"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("+61412345678"))
	require.Equal(t, http.StatusTooManyRequests, send("+61412345678"))
	require.Equal(t, http.StatusOK, send("+61412345679"))
}

func TestRateLimitByAccountIgnoresAddress(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.RateLimitByAccount(config)(okHandler())

	send := func(accountID, ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/session/pin", nil)
		req.RemoteAddr = ip + ":1234"
		if accountID != "" {
			req = req.WithContext(httpx.WithAuth(req.Context(), jwtx.Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: accountID},
			}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("acc-1", "10.0.0.1"))
	require.Equal(t, http.StatusOK, send("acc-1", "10.0.0.2"))
	require.Equal(t, http.StatusTooManyRequests, send("acc-1", "10.0.0.3"))

	require.Equal(t, http.StatusOK, send("acc-2", "10.0.0.3"))
	require.Equal(t, http.StatusOK, send("", "10.0.0.9"))
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-2")

	cfg := httpx.ParseRateLimitFromEnv("TEST", httpx.StrictLimit)
	require.Equal(t, 50, cfg.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, httpx.StrictLimit.Burst, cfg.Burst)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"first", "second"}, order)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline bool
	h := httpx.Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, deadline)
}

type stubVerifier struct {
	claims jwtx.Claims
	err    error
}

func (s stubVerifier) Verify(string) (jwtx.Claims, error) { return s.claims, s.err }

func TestAuthnMiddleware(t *testing.T) {
	claims := jwtx.Claims{SID: "sess-1"}
	claims.Subject = "acc-1"

	var gotUser, gotSession string
	h := httpx.AuthnMiddleware(stubVerifier{claims: claims})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserID(r.Context())
		gotSession = httpx.SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "acc-1", gotUser)
	require.Equal(t, "sess-1", gotSession)

	noSession := httpx.AuthnMiddleware(stubVerifier{claims: jwtx.Claims{}})(okHandler())
	rec = httptest.NewRecorder()
	noSession.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Code string `json:"code"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"AB12CD"}`))
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v))
	require.Equal(t, "AB12CD", v.Code)

	for _, body := range []string{`{"code":1}`, `{"other":"x"}`, `{"code":"a"}{}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		require.ErrorIs(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v), httpx.ErrBadJSON, body)
	}
}
