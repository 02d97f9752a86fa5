package nyt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// DefaultSection is the top stories section shown on the home page
const DefaultSection = "world"

const sourceName = "The New York Times"

// Config describes the Top Stories API
type Config struct {
	BaseURL   string
	Key       string
	Section   string
	Email     string
	RateLimit float64
	Timeout   time.Duration
}

type multimedia struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Caption string `json:"caption"`
}

type article struct {
	Title         string       `json:"title"`
	Abstract      string       `json:"abstract"`
	URL           string       `json:"url"`
	Byline        string       `json:"byline"`
	PublishedDate string       `json:"published_date"`
	UpdatedDate   string       `json:"updated_date"`
	Multimedia    []multimedia `json:"multimedia"`
}

type topStoriesResponse struct {
	Status string `json:"status"`
	Fault  *struct {
		FaultString string `json:"faultstring"`
	} `json:"fault"`
	Results []article `json:"results"`
}

// Provider serves top stories as news items. The query text is ignored:
// the section is fixed per provider.
type Provider struct {
	client  *httpclient.Client
	key     string
	section string
}

// NewProvider creates a top stories provider
func NewProvider(cfg Config) *Provider {
	if cfg.Section == "" {
		cfg.Section = DefaultSection
	}
	ua := "HuggyPanda/0.1.0 (https://huggypanda.com)"
	if cfg.Email != "" {
		ua = fmt.Sprintf("HuggyPanda/0.1.0 (https://huggypanda.com; %s)", cfg.Email)
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: ua,
		}),
		key:     cfg.Key,
		section: cfg.Section,
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Source{Kind: types.KindNews}
}

// Fetch returns the section's current top stories
func (p *Provider) Fetch(ctx context.Context, _ types.Query) ([]types.Item, error) {
	var out topStoriesResponse
	path := fmt.Sprintf("/topstories/v2/%s.json", p.section)
	if err := p.client.GetJSON(ctx, path, map[string]string{"api-key": p.key}, &out); err != nil {
		return nil, err
	}
	if out.Fault != nil {
		return nil, &httpclient.UpstreamError{Status: 200, Message: out.Fault.FaultString}
	}
	if out.Status != "" && !strings.EqualFold(out.Status, "OK") {
		return nil, &httpclient.UpstreamError{Status: 200, Message: "status " + out.Status}
	}

	items := make([]types.Item, 0, len(out.Results))
	for _, a := range out.Results {
		if a.Title == "" || a.URL == "" {
			continue
		}
		items = append(items, types.NewNews(types.NewsItem{
			Headline:  a.Title,
			Link:      a.URL,
			Timestamp: parseDate(a.PublishedDate),
			Source:    sourceName,
			Snippet:   a.Abstract,
			Thumbnail: thumbnail(a.Multimedia),
		}))
	}
	return items, nil
}

// thumbnail prefers the smallest square crop, then any image
func thumbnail(media []multimedia) string {
	for _, m := range media {
		if m.Format == "Standard Thumbnail" || m.Format == "thumbLarge" {
			return m.URL
		}
	}
	if len(media) > 0 {
		return media[0].URL
	}
	return ""
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
