package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"bizdir/internal/platform/metrics"
)

// NotifyClient calls the notification service. Sends are fire-and-forget from
// the caller's perspective: a failed send is logged and surfaced, never
// retried here.
type NotifyClient struct {
	client
	adminEmail string
}

func NewNotifyClient(baseURL, adminEmail string, logger *slog.Logger, m *metrics.Metrics) *NotifyClient {
	return &NotifyClient{
		client:     newClient("notify", baseURL, logger, m),
		adminEmail: adminEmail,
	}
}

// SendAlreadyRegistered emails an existing account holder who attempted to
// enrol again. Sent instead of a verification email so account existence is
// not leaked to the submitter.
func (c *NotifyClient) SendAlreadyRegistered(ctx context.Context, email string) error {
	payload := map[string]string{
		"template": "already-registered",
		"email":    email,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/notifications/", nil, payload, nil)
	return err
}

// SendCollaborationRequested alerts the directory admins that an applicant
// asked to join an already-claimed company profile.
func (c *NotifyClient) SendCollaborationRequested(ctx context.Context, companyNumber, applicantEmail string) error {
	payload := map[string]string{
		"template":        "collaboration-requested",
		"email":           c.adminEmail,
		"company_number":  companyNumber,
		"applicant_email": applicantEmail,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/notifications/", nil, payload, nil)
	return err
}
