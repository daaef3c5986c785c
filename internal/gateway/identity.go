package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"bizdir/internal/platform/metrics"
)

// User is the authenticated caller as reported by the SSO service. Fetched
// fresh on every request and never cached beyond the request lifetime.
type User struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	SessionToken       string `json:"session_token"`
	HasExistingProfile bool   `json:"has_existing_profile"`
}

// VerifiedSession is the successful outcome of a code verification: the
// session-linking cookies the SSO issued, to be copied onto our response.
type VerifiedSession struct {
	Cookies []*http.Cookie
}

// IdentityClient calls the external single-sign-on service. It is an opaque
// authentication oracle: protocol internals stay on the other side of this
// boundary.
type IdentityClient struct {
	client
}

func NewIdentityClient(baseURL string, logger *slog.Logger, m *metrics.Metrics) *IdentityClient {
	return &IdentityClient{client: newClient("identity", baseURL, logger, m)}
}

// SessionUser resolves the caller behind an SSO session cookie. A missing or
// expired session is an anonymous caller, not an error.
func (c *IdentityClient) SessionUser(ctx context.Context, sessionKey string) (*User, error) {
	if sessionKey == "" {
		return nil, nil
	}
	var user User
	result, err := c.do(ctx, http.MethodGet, "/api/v1/session-user/",
		url.Values{"session_key": {sessionKey}}, nil, &user)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, nil
	}
	return &user, nil
}

// CreateUser registers a new account with the given credentials. The caller
// must branch on the result: a 400 carrying a password error is recoverable,
// a 400 carrying only an email error means the account already exists.
func (c *IdentityClient) CreateUser(ctx context.Context, email, password string) (Result, error) {
	payload := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/v1/user/", nil, payload, nil)
}

// VerifyCode checks a one-time verification code. The call is not idempotent:
// a consumed code cannot be replayed.
func (c *IdentityClient) VerifyCode(ctx context.Context, email, code string) (*VerifiedSession, Result, error) {
	payload := map[string]string{"email": email, "code": code}
	result, cookies, err := c.roundTrip(ctx, http.MethodPost, "/api/v1/user/verify/", nil, payload, nil)
	if err != nil {
		return nil, result, err
	}
	if !result.OK() {
		return nil, result, nil
	}
	return &VerifiedSession{Cookies: cookies}, result, nil
}

// RegenerateCode asks the SSO to issue and email a fresh verification code.
func (c *IdentityClient) RegenerateCode(ctx context.Context, email string) (Result, error) {
	payload := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/v1/user/verify/regenerate/", nil, payload, nil)
}
