package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

const maxErrorBody = 64 << 10

// HTTPClient talks to the DoctorConnect REST backend. It implements
// providers.AppointmentAPI, providers.DoctorAPI and providers.ReviewAPI.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     providers.TokenSource
	limiter    *rate.Limiter
	metrics    *observability.Metrics
}

var (
	_ providers.AppointmentAPI = (*HTTPClient)(nil)
	_ providers.DoctorAPI      = (*HTTPClient)(nil)
	_ providers.ReviewAPI      = (*HTTPClient)(nil)
)

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests at rps with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records request counts and durations
func WithMetrics(m *observability.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithTokenSource attaches a bearer token to every request
func WithTokenSource(ts providers.TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// NewClient creates a client for the backend rooted at baseURL
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokenSource returns a copy of c that authenticates with ts. The copy
// shares the transport and the rate limiter.
func (c *HTTPClient) WithTokenSource(ts providers.TokenSource) *HTTPClient {
	clone := *c
	clone.tokens = ts
	return &clone
}

// request describes one REST call. route is the templated path used for
// span names and metrics; path is the concrete one.
type request struct {
	method string
	route  string
	path   string
	body   interface{}
	// token overrides the token source when set
	token string
	// anonymous suppresses the Authorization header
	anonymous bool
}

func (c *HTTPClient) doJSON(ctx context.Context, req request, out interface{}) error {
	ctx, span := observability.StartSpan(ctx, "bookingapi "+req.method+" "+req.route,
		attribute.String("http.method", req.method),
		attribute.String("http.route", req.route),
	)
	defer span.End()

	status, err := c.do(ctx, req, out)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil && !apperrors.IsCanceled(err) {
		observability.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, req request, out interface{}) (int, error) {
	logger := observability.LoggerFromContext(ctx)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return 0, apperrors.NewCanceledError("request canceled", ctx.Err())
			}
			return 0, apperrors.NewNetworkError("rate limiter refused request", err)
		}
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return 0, apperrors.NewInternalError("failed to encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	if !req.anonymous {
		token := req.token
		if token == "" && c.tokens != nil {
			token, err = c.tokens.Token(ctx)
			if err != nil {
				return 0, err
			}
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return 0, apperrors.NewCanceledError("request canceled", ctx.Err())
		}
		return 0, apperrors.NewNetworkError(fmt.Sprintf("%s %s failed", req.method, req.route), err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	observability.RecordRequestMetric(ctx, c.metrics, req.method, req.route, resp.StatusCode, elapsed)
	logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, apperrors.NewServerError(resp.StatusCode, errorMessage(resp.StatusCode, raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return resp.StatusCode, apperrors.NewCanceledError("request canceled", ctx.Err())
		}
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, apperrors.NewInternalError("empty response body", err)
		}
		return resp.StatusCode, apperrors.NewInternalError("failed to decode response", err)
	}
	return resp.StatusCode, nil
}

// errorMessage extracts the reason from a non-2xx body: a JSON message or
// error field, a JSON string, then the raw text, then a generic status line.
func errorMessage(status int, raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return msg
		}
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	if text = strings.TrimSpace(text); text != "" && text != "{}" {
		return text
	}
	return fmt.Sprintf("request failed (%d)", status)
}
