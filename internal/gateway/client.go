package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bizdir/internal/platform/metrics"
	dErrors "bizdir/pkg/domain-errors"
)

const callTimeout = 10 * time.Second

// client is the shared base for all collaborator clients: one base URL, one
// http.Client, tracing and outcome metrics.
type client struct {
	service string
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func newClient(service, baseURL string, logger *slog.Logger, m *metrics.Metrics) client {
	return client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: callTimeout},
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("bizdir/gateway"),
	}
}

// do performs one JSON round trip and classifies the response. out, when
// non-nil, receives the decoded success payload. The returned error is non-nil
// only for OutcomeServerError (transport failures included), already coded for
// the top-level 5xx path.
func (c *client) do(ctx context.Context, method, path string, query url.Values, body, out any) (Result, error) {
	result, _, err := c.roundTrip(ctx, method, path, query, body, out)
	return result, err
}

// roundTrip is do plus the response cookies, for the one call (code
// verification) whose session-linking cookies must be copied through.
func (c *client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) (Result, []*http.Cookie, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return serverErrorResult(), nil, dErrors.Wrap(dErrors.CodeInternal, "encode request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	ctx, span := c.tracer.Start(ctx, c.service+" "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", c.service),
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return serverErrorResult(), nil, dErrors.Wrap(dErrors.CodeInternal, "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.IncRemoteCall(c.service, string(OutcomeServerError))
		c.logger.ErrorContext(ctx, "remote call failed",
			"service", c.service,
			"path", path,
			"error", err.Error(),
		)
		return serverErrorResult(), nil, dErrors.Wrap(dErrors.CodeInternal, c.service+" unreachable", err)
	}
	defer res.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		c.metrics.IncRemoteCall(c.service, string(OutcomeServerError))
		return serverErrorResult(), nil, dErrors.Wrap(dErrors.CodeInternal, "read response body", err)
	}

	result := classify(res.StatusCode, raw)
	c.metrics.IncRemoteCall(c.service, string(result.Outcome))

	if result.Outcome == OutcomeServerError {
		c.logger.ErrorContext(ctx, "remote call returned server error",
			"service", c.service,
			"path", path,
			"status", res.StatusCode,
		)
		return result, nil, dErrors.New(dErrors.CodeInternal, c.service+" returned an unexpected error")
	}

	if result.OK() && out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.IncRemoteCall(c.service, string(OutcomeServerError))
			return serverErrorResult(), nil, dErrors.Wrap(dErrors.CodeInternal, "decode "+c.service+" response", err)
		}
	}

	return result, res.Cookies(), nil
}
