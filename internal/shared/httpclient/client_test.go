package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"cats","count":3}`))
	})

	c := New(Config{BaseURL: srv.URL, Headers: map[string]string{"X-Subscription-Token": "secret"}})

	var out payload
	require.NoError(t, c.GetJSON(context.Background(), "/items", map[string]string{"q": "cats"}, &out))
	assert.Equal(t, payload{Name: "cats", Count: 3}, out)
}

func TestPostJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"name":"ok","count":1}`))
	})

	c := New(Config{BaseURL: srv.URL})

	var out payload
	require.NoError(t, c.PostJSON(context.Background(), "/gen", payload{Name: "in"}, &out))
	assert.Equal(t, "ok", out.Name)
}

func TestErrorClasses(t *testing.T) {
	t.Run("upstream status", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})

		err := New(Config{BaseURL: srv.URL}).GetJSON(context.Background(), "/", nil, &payload{})

		var upstream *UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
		assert.Contains(t, upstream.Error(), "quota exceeded")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		})

		err := New(Config{BaseURL: srv.URL}).GetJSON(context.Background(), "/", nil, &payload{})
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("deadline", func(t *testing.T) {
		release := make(chan struct{})
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := New(Config{BaseURL: srv.URL}).GetJSON(ctx, "/", nil, &payload{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := New(Config{BaseURL: url}).GetJSON(context.Background(), "/", nil, &payload{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformed)
		var upstream *UpstreamError
		assert.False(t, errors.As(err, &upstream))
	})
}

func TestDecodeEmpty(t *testing.T) {
	assert.ErrorIs(t, Decode(nil, &payload{}), ErrMalformed)
}

func TestRaw(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>hi</p>"))
	})

	body, err := New(Config{BaseURL: srv.URL}).Raw(context.Background(), "/page", nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(body))
}

func TestRetries(t *testing.T) {
	t.Run("recovers after server errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"name":"late","count":1}`))
		})

		c := New(Config{BaseURL: srv.URL, Retries: 2, RetryWait: time.Millisecond})

		var out payload
		require.NoError(t, c.GetJSON(context.Background(), "/items", nil, &out))
		assert.Equal(t, "late", out.Name)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("last answer maps to upstream error", func(t *testing.T) {
		var hits atomic.Int32
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		})

		c := New(Config{BaseURL: srv.URL, Retries: 1, RetryWait: time.Millisecond})

		err := c.GetJSON(context.Background(), "/items", nil, &payload{})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusBadGateway, upstream.Status)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("disabled by default", func(t *testing.T) {
		var hits atomic.Int32
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "busy", http.StatusServiceUnavailable)
		})

		err := New(Config{BaseURL: srv.URL}).GetJSON(context.Background(), "/items", nil, &payload{})
		assert.Error(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})
}
