package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"bizdir/internal/platform/metrics"
)

// ProfileDraft is the whitelisted aggregate of wizard step data submitted for
// profile creation. It exists only transiently during completion.
type ProfileDraft map[string]string

// DirectoryClient calls the directory persistence service, the remote CRUD
// store that owns all business profile data.
type DirectoryClient struct {
	client
}

func NewDirectoryClient(baseURL string, logger *slog.Logger, m *metrics.Metrics) *DirectoryClient {
	return &DirectoryClient{client: newClient("directory", baseURL, logger, m)}
}

// CreateProfile creates the business profile from a completed enrolment.
func (c *DirectoryClient) CreateProfile(ctx context.Context, draft ProfileDraft) (Result, error) {
	return c.do(ctx, http.MethodPost, "/api/v1/company/", nil, draft, nil)
}

// CompanyClaimed reports whether a company number is already claimed by
// another account. Not-found means the company was never enrolled, which is a
// valid absence rather than an error.
func (c *DirectoryClient) CompanyClaimed(ctx context.Context, number string) (bool, error) {
	result, err := c.do(ctx, http.MethodGet, "/api/v1/company/"+url.PathEscape(number)+"/", nil, nil, nil)
	if err != nil {
		return false, err
	}
	return result.OK(), nil
}

// RequestCollaboration files a request to join an already-claimed company
// profile instead of creating a duplicate.
func (c *DirectoryClient) RequestCollaboration(ctx context.Context, number, applicantEmail string) (Result, error) {
	payload := map[string]string{
		"company_number":  number,
		"applicant_email": applicantEmail,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/collaborators/request/", nil, payload, nil)
}

// AcceptInvite completes a collaborator enrolment keyed by the invitation
// key the applicant followed. Invalid and not-found results signal an expired
// invitation.
func (c *DirectoryClient) AcceptInvite(ctx context.Context, key string, draft ProfileDraft) (Result, error) {
	payload := map[string]any{
		"invite_key": key,
		"profile":    draft,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/collaborators/accept/", nil, payload, nil)
}

// ClaimPreVerified completes a pre-verified enrolment keyed by an
// invitation-issued enrolment key. Invalid and not-found results signal an
// expired or bogus key; the caller renders the dedicated failure page rather
// than retrying.
func (c *DirectoryClient) ClaimPreVerified(ctx context.Context, key string, draft ProfileDraft) (Result, error) {
	payload := map[string]any{
		"enrolment_key": key,
		"profile":       draft,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/pre-verified/claim/", nil, payload, nil)
}
