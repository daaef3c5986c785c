// Package httptransport is the thin HTTP layer: routing, cookies and
// rendering. Flow decisions live in the wizard engine; handlers translate
// between HTTP and engine results.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizdir/internal/gateway"
	"bizdir/internal/platform/metrics"
	"bizdir/internal/platform/middleware"
	"bizdir/internal/session"
	"bizdir/internal/wizard"
)

// SSOCookieName is the identity service's session cookie. We read it to
// resolve the caller and copy it through verbatim after code verification; its
// contents stay opaque.
const SSOCookieName = "sessionid"

// IdentityResolver resolves the authenticated caller from an SSO cookie.
type IdentityResolver interface {
	SessionUser(ctx context.Context, sessionKey string) (*gateway.User, error)
}

// LookupService serves the typeahead endpoints backing the search steps.
type LookupService interface {
	SearchCompanies(ctx context.Context, term string) ([]gateway.Company, error)
	SearchAddresses(ctx context.Context, postcode string) ([]gateway.Address, error)
}

// HealthChecker reports backend liveness for the healthcheck endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handler struct {
	engine   *wizard.Engine
	identity IdentityResolver
	lookup   LookupService
	sessions session.Store
	health   HealthChecker
	renderer *Renderer
	logger   *slog.Logger
}

func NewHandler(
	engine *wizard.Engine,
	identity IdentityResolver,
	lookup LookupService,
	sessions session.Store,
	health HealthChecker,
	renderer *Renderer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		identity: identity,
		lookup:   lookup,
		sessions: sessions,
		health:   health,
		renderer: renderer,
		logger:   logger,
	}
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(h *Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Device)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthcheck/", h.handleHealthcheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/company-search", h.handleCompanySearch)
	r.Get("/api/address-search", h.handleAddressSearch)

	r.Get("/enrol/success/", h.handleSuccess)
	r.Get("/enrol/failure/", h.handleFailure)
	r.Get("/enrol/{flow}/{step}/", h.handleStepGet)
	r.Post("/enrol/{flow}/{step}/", h.handleStepPost)

	return r
}
