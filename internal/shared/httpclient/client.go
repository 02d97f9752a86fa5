package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/huggypanda/backend/internal/infrastructure/tracing"
	"golang.org/x/time/rate"
)

// ErrMalformed marks a response whose body could not be decoded into the
// expected shape.
var ErrMalformed = errors.New("malformed response")

// UpstreamError is a well-formed refusal from the upstream: a non-2xx
// status or an explicit failure flag in the payload.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// Config describes one upstream
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 means unlimited
	UserAgent string
	Headers   map[string]string
	// Retries repeats connection failures and 5xx answers; 0 disables.
	// Provider calls keep 0 since the gateway deadline is the retry budget.
	Retries   int
	RetryWait time.Duration
}

// Client wraps resty with rate limiting and uniform error mapping.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// New creates a client for cfg
func New(cfg Config) *Client {
	transport := newTransport(cfg.Retries, cfg.RetryWait)

	if cfg.UserAgent == "" {
		cfg.UserAgent = "huggypanda-search/1.0"
	}

	r := resty.New().
		SetTransport(transport).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
	if cfg.BaseURL != "" {
		r.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	}
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	for k, v := range cfg.Headers {
		r.SetHeader(k, v)
	}

	c := &Client{resty: r}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

func newTransport(retries int, wait time.Duration) http.RoundTripper {
	if retries <= 0 {
		return cleanhttp.DefaultPooledTransport()
	}
	if wait <= 0 {
		wait = 100 * time.Millisecond
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = wait
	rc.RetryWaitMax = 4 * wait
	rc.Logger = nil
	// Hand the last response back so a final 5xx maps to UpstreamError
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &retryablehttp.RoundTripper{Client: rc}
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetHeader(key, value)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates a request bound to ctx after waiting for the limiter
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	req := c.resty.R().SetContext(ctx)
	tracing.Inject(ctx, req.Header)
	return req, nil
}

// GetJSON issues a GET and decodes a 2xx body into out
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	req, err := c.Request(ctx)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	return c.finish(ctx, req, http.MethodGet, path, out)
}

// PostJSON sends body as JSON and decodes a 2xx body into out
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	req, err := c.Request(ctx)
	if err != nil {
		return err
	}
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(data)
	}
	return c.finish(ctx, req, http.MethodPost, path, out)
}

// Do executes a prepared request and maps the outcome
func (c *Client) Do(ctx context.Context, req *resty.Request, method, path string, out interface{}) error {
	return c.finish(ctx, req, method, path, out)
}

func (c *Client) finish(ctx context.Context, req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		// Context errors win so deadline and cancellation classify cleanly
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &UpstreamError{Status: resp.StatusCode(), Message: truncate(resp.String(), 200)}
	}

	if out == nil {
		return nil
	}
	return Decode(resp.Body(), out)
}

// Decode unmarshals JSON with sonic, wrapping failures in ErrMalformed
func Decode(data []byte, out interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Raw issues a GET and returns the 2xx body undecoded
func (c *Client) Raw(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	req.SetHeader("Accept", "*/*")

	resp, err := req.Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &UpstreamError{Status: resp.StatusCode(), Message: truncate(resp.String(), 200)}
	}
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
