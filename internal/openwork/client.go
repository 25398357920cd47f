// Package openwork reads agents and marketplace statistics from the
// Openwork HTTP API.
package openwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// DefaultBaseURL is the public marketplace endpoint.
const DefaultBaseURL = "https://openwork.bot/api"

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 4 << 20
)

var (
	tracer = otel.Tracer("leaderboard/openwork")
	meter  = otel.GetMeterProvider().Meter("leaderboard/openwork")
)

// Client talks to the marketplace API. Every call is a single attempt; the
// caller decides whether to retry.
type Client struct {
	baseURL    string
	scale      float64
	httpClient *http.Client
	log        *slog.Logger
	failures   otelmetric.Int64Counter
}

var _ source.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 10-second client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithReputationScale sets the top of the server's reputation range.
func WithReputationScale(scale float64) Option {
	return func(c *Client) {
		if scale > 0 {
			c.scale = scale
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient returns a Client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		scale:      models.PercentScale,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	failures, err := meter.Int64Counter("leaderboard.openwork.fetch_failures",
		otelmetric.WithDescription("Failed requests to the marketplace API"),
	)
	if err == nil {
		c.failures = failures
	}
	return c
}

// ListAgents fetches GET /agents with the filter encoded as query parameters.
func (c *Client) ListAgents(ctx context.Context, f source.Filter) ([]models.Agent, error) {
	q := url.Values{}
	if f.Specialty != "" {
		q.Set("specialty", f.Specialty)
	}
	if f.MinReputation > 0 {
		q.Set("min_reputation", strconv.Itoa(c.serverReputation(f.MinReputation)))
	}
	if f.Available != nil && *f.Available {
		q.Set("available", "true")
	}
	var agents []models.Agent
	err := c.get(ctx, "list agents", "/agents", q, func(body []byte) error {
		var err error
		agents, err = decodeAgents(body, c.scale)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent fetches GET /agents/{id}.
func (c *Client) GetAgent(ctx context.Context, id string) (models.Agent, error) {
	var raw rawAgent
	err := c.get(ctx, "get agent", "/agents/"+url.PathEscape(id), nil, func(body []byte) error {
		return json.Unmarshal(body, &raw)
	})
	if err != nil {
		var fe *source.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return models.Agent{}, fmt.Errorf("%w: %s", source.ErrNotFound, id)
		}
		return models.Agent{}, err
	}
	return normalizeAgent(raw, c.scale), nil
}

// Stats fetches GET /dashboard.
func (c *Client) Stats(ctx context.Context) (models.AggregateStats, error) {
	var raw rawDashboard
	err := c.get(ctx, "dashboard", "/dashboard", nil, func(body []byte) error {
		return json.Unmarshal(body, &raw)
	})
	if err != nil {
		return models.AggregateStats{}, err
	}
	return normalizeStats(raw, c.scale), nil
}

// serverReputation converts a percent threshold to the server's scale.
func (c *Client) serverReputation(percent int) int {
	return int(float64(percent) * c.scale / models.PercentScale)
}

// get issues one GET and hands the body to decode, all under a single client
// span so decode failures are recorded alongside transport failures.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, decode func([]byte) error) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	ctx, span := tracer.Start(ctx, "openwork "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", u),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return c.fail(ctx, &source.FetchError{Op: op, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, &source.FetchError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return c.fail(ctx, &source.FetchError{Op: op, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return c.fail(ctx, &source.FetchError{Op: op, Err: fmt.Errorf("read body: %w", err)})
	}
	if err := decode(body); err != nil {
		return c.fail(ctx, &source.FetchError{Op: op, Err: fmt.Errorf("decode: %w", err)})
	}
	return nil
}

// fail records a failed request on the active span and the failure counter.
func (c *Client) fail(ctx context.Context, fe *source.FetchError) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(fe)
	span.SetStatus(codes.Error, fe.Error())
	if c.failures != nil {
		c.failures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("op", fe.Op)))
	}
	if fe.StatusCode != http.StatusNotFound {
		c.log.WarnContext(ctx, "openwork request failed", "op", fe.Op, "status", fe.StatusCode, "error", fe.Err)
	}
	return fe
}
