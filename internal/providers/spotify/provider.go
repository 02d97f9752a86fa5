package spotify

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// refreshMargin renews the access token this long before it expires
const refreshMargin = 30 * time.Second

// Config describes the Spotify Web API and its token endpoint
type Config struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	Limit        int
	RateLimit    float64
	Timeout      time.Duration
	Now          func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
	PreviewURL string `json:"preview_url"`
	Explicit   bool   `json:"explicit"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string  `json:"name"`
		ReleaseDate string  `json:"release_date"`
		Images      []image `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type searchResponse struct {
	Tracks struct {
		Items []track `json:"items"`
	} `json:"tracks"`
}

// Provider searches Spotify tracks with an app-level (client credentials)
// token that is cached until shortly before it expires.
type Provider struct {
	api    *httpclient.Client
	auth   *httpclient.Client
	cfg    Config
	now    func() time.Time
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewProvider creates a Spotify provider
func NewProvider(cfg Config) *Provider {
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		api: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
		}),
		auth: httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
		cfg:  cfg,
		now:  now,
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Universal(types.SubkindMusic)
}

// Fetch returns one music widget per matching track
func (p *Provider) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := p.api.Request(ctx)
	if err != nil {
		return nil, err
	}
	req.SetAuthToken(token).SetQueryParams(map[string]string{
		"q":     q.Text,
		"type":  "track",
		"limit": strconv.Itoa(p.cfg.Limit),
	})

	var out searchResponse
	if err := p.api.Do(ctx, req, http.MethodGet, "/search", &out); err != nil {
		var upstream *httpclient.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusUnauthorized {
			p.invalidate()
		}
		return nil, err
	}

	items := make([]types.Item, 0, len(out.Tracks.Items))
	for _, t := range out.Tracks.Items {
		items = append(items, types.NewWidget(types.Widget{
			Subkind: types.SubkindMusic,
			Title:   t.Name,
			Payload: trackPayload(t),
		}))
	}
	return items, nil
}

func (p *Provider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiry) {
		return p.token, nil
	}

	req, err := p.auth.Request(ctx)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"})

	var tok tokenResponse
	if err := p.auth.Do(ctx, req, http.MethodPost, p.cfg.AuthURL, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &httpclient.UpstreamError{Status: http.StatusOK, Message: "token response without access_token"}
	}

	p.token = tok.AccessToken
	p.expiry = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshMargin)
	return p.token, nil
}

func (p *Provider) invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

func trackPayload(t track) map[string]interface{} {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	payload := map[string]interface{}{
		"artists":      strings.Join(artists, ", "),
		"album":        t.Album.Name,
		"release_date": t.Album.ReleaseDate,
		"duration":     formatDuration(t.DurationMS),
		"popularity":   t.Popularity,
		"explicit":     t.Explicit,
		"url":          t.ExternalURLs.Spotify,
	}
	if len(t.Album.Images) > 0 {
		// Spotify lists album art largest first
		payload["album_art"] = t.Album.Images[0].URL
	}
	if t.PreviewURL != "" {
		payload["preview_url"] = t.PreviewURL
	}
	return payload
}

func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return strconv.Itoa(int(d.Minutes())) + ":" + leftPad(int(d.Seconds())%60)
}

func leftPad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
