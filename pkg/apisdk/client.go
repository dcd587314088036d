package apisdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the ThreatCombat membership API.
// It provides access to unauthenticated operations and can create
// authenticated Sessions via Login.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for an authenticated session. The server must
// be configured to return the token in the response body.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.LoginRaw(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// NewSessionFromToken creates a session from a previously issued token.
// No validation is performed; an expired token surfaces as a 401 on first use.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}
