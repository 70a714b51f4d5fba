// Package connection provides the HTTP transport for the bil CLI.
package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/bil-go/internal/infra/buildinfo"
	"github.com/yndnr/bil-go/internal/telemetry/logger"
	"github.com/yndnr/bil-go/internal/telemetry/metric"
)

// HeaderRequestID carries the per-request ULID.
const HeaderRequestID = "X-Request-ID"

// HTTPClient provides HTTP communication with the bil API.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	metrics   *metric.Registry
	logger    logger.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics instruments the transport with the given registry.
func WithMetrics(r *metric.Registry) Option {
	return func(c *HTTPClient) {
		c.metrics = r
	}
}

// WithRateLimit limits outgoing requests to rps per second.
// A non-positive rps disables limiting.
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

// WithTimeout sets an overall timeout per request. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// NewHTTPClient creates a new HTTP client for the given base URL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	// Ensure baseURL has http:// prefix
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{},
		userAgent: buildinfo.UserAgent(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.metrics != nil {
		c.client.Transport = c.metrics.InstrumentRoundTripper(c.client.Transport)
	}

	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "")
}

// PostFile uploads r as a multipart/form-data part named field.
func (c *HTTPClient) PostFile(ctx context.Context, path, field, filename string, r io.Reader) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
}

// Fetch performs a GET and decodes the JSON body into out.
func (c *HTTPClient) Fetch(ctx context.Context, path string, out any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return ParseResponse(resp, out)
}

// Send performs a JSON write (POST or PUT) and decodes the response into
// out when out is non-nil. An empty 2xx body leaves out untouched.
// Non-2xx responses yield a *StatusError.
func (c *HTTPClient) Send(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.doJSON(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := ParseResponse(resp, out); err != nil && !errors.Is(err, ErrEmptyBody) {
		return err
	}
	return nil
}

// Remove performs a DELETE. The response status is not inspected.
func (c *HTTPClient) Remove(ctx context.Context, path string) error {
	resp, err := c.Delete(ctx, path)
	if err != nil {
		return err
	}
	DrainResponse(resp)
	return nil
}

// Upload performs a multipart upload. Non-2xx responses yield a *StatusError.
func (c *HTTPClient) Upload(ctx context.Context, path, field, filename string, r io.Reader) error {
	resp, err := c.PostFile(ctx, path, field, filename, r)
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// Download performs a GET and streams the body into w, returning the bytes
// written. Non-2xx responses yield a *StatusError.
func (c *HTTPClient) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, newStatusError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, bodyReader, "application/json")
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	// A request id already in ctx is reused, otherwise each request gets its own.
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	if _, ok := logger.Lookup(ctx); !ok {
		ctx = logger.WithLogger(ctx, c.logger)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := logger.L(ctx).WithContext(ctx).With("method", method, "path", path)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	log.Debug("request completed", "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// addHeaders adds the common headers.
func (c *HTTPClient) addHeaders(req *http.Request, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
}

// ParseResponse parses a JSON response body into the target.
// With a nil target the body is discarded. An empty body with a non-nil
// target fails with ErrEmptyBody.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("parse response: %w", ErrEmptyBody)
		}
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

// DrainResponse discards and closes the body so the connection can be reused.
func DrainResponse(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
