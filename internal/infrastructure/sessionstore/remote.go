package sessionstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// validateRetries bounds repeats of the idempotent validity check. Creation
// is never repeated so one request mints at most one token.
const validateRetries = 2

// Remote talks to another deployment's session endpoints
type Remote struct {
	client *httpclient.Client
	reads  *httpclient.Client
}

type createResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Token string `json:"token"`
	} `json:"response"`
}

type validateResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Valid      bool  `json:"valid"`
		TTLSeconds int64 `json:"ttl_seconds"`
	} `json:"response"`
}

// NewRemote creates a client for the session service at baseURL
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		client: httpclient.New(httpclient.Config{BaseURL: baseURL, Timeout: timeout}),
		reads: httpclient.New(httpclient.Config{
			BaseURL:   baseURL,
			Timeout:   timeout,
			Retries:   validateRetries,
			RetryWait: 20 * time.Millisecond,
		}),
	}
}

// Create asks the service for a new token
func (s *Remote) Create(ctx context.Context) (string, error) {
	var out createResponse
	if err := s.client.PostJSON(ctx, "/api/sessions", nil, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !out.Success || out.Response.Token == "" {
		return "", &httpclient.UpstreamError{Status: http.StatusOK, Message: "session service refused creation"}
	}
	return out.Response.Token, nil
}

// Validate asks the service whether token is live
func (s *Remote) Validate(ctx context.Context, token string) (types.Validity, error) {
	var out validateResponse
	if err := s.reads.GetJSON(ctx, "/api/sessions/"+url.PathEscape(token), nil, &out); err != nil {
		return types.Validity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !out.Success {
		return types.Validity{}, nil
	}
	return types.Validity{
		Valid: out.Response.Valid,
		TTL:   time.Duration(out.Response.TTLSeconds) * time.Second,
	}, nil
}

// Close is a no-op; the transport pool is shared
func (s *Remote) Close() error { return nil }
