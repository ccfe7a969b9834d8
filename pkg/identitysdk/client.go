package identitysdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the tilldesk identity service. It covers the
// unauthenticated endpoints and creates Sessions from token responses.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Language is sent as Accept-Language so error descriptions come back
	// localized. Empty leaves the server default (English).
	Language string
}

// NewSDKClient creates a new identity service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromToken wraps an access token obtained elsewhere. expiresIn is
// in seconds.
func (c *SDKClient) NewSessionFromToken(accessToken, sessionID string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		SessionID:   sessionID,
	})
}
