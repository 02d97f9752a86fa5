package brave

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huggypanda/backend/internal/shared/htmlutil"
	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// SuggestCount is how many completions are requested per prefix
const SuggestCount = 20

// Config describes the Brave Search API account
type Config struct {
	BaseURL    string
	SearchKey  string
	SuggestKey string
	Safesearch string
	Email      string
	ImageCount int
	RateLimit  float64
}

// Provider talks to the Brave Search API. Web, Images and News expose the
// individual endpoints as gateway backends.
type Provider struct {
	search     *httpclient.Client
	suggest    *httpclient.Client
	safesearch string
	imageCount int
}

// NewProvider creates a Brave provider
func NewProvider(cfg Config) *Provider {
	ua := "HuggyPanda/0.1.0 (https://huggypanda.com)"
	if cfg.Email != "" {
		ua = fmt.Sprintf("HuggyPanda/0.1.0 (https://huggypanda.com; %s)", cfg.Email)
	}
	if cfg.Safesearch == "" {
		cfg.Safesearch = "moderate"
	}
	if cfg.ImageCount <= 0 {
		cfg.ImageCount = 20
	}

	newClient := func(key string) *httpclient.Client {
		return httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			RateLimit: cfg.RateLimit,
			UserAgent: ua,
			Headers: map[string]string{
				"X-Subscription-Token": key,
				"Accept-Language":      "en-US",
			},
		})
	}

	return &Provider{
		search:     newClient(cfg.SearchKey),
		suggest:    newClient(cfg.SuggestKey),
		safesearch: cfg.Safesearch,
		imageCount: cfg.ImageCount,
	}
}

// Web returns the general web results backend
func (p *Provider) Web() *Web { return &Web{p: p} }

// Images returns the image search backend
func (p *Provider) Images() *Images { return &Images{p: p} }

// News returns the news search backend
func (p *Provider) News() *News { return &News{p: p} }

// Suggest returns query completions for a prefix
func (p *Provider) Suggest(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	var out suggestResponse
	err := p.suggest.GetJSON(ctx, "/suggest/search", map[string]string{
		"q":     prefix,
		"count": strconv.Itoa(SuggestCount),
	}, &out)
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		if r.Query != "" {
			suggestions = append(suggestions, r.Query)
		}
	}
	return suggestions, nil
}

// Web is the web results backend
type Web struct{ p *Provider }

// Source identifies the backend
func (w *Web) Source() types.Source { return types.Source{Kind: types.KindWeb} }

// Fetch returns web results
func (w *Web) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	items, _, err := w.FetchAnnotated(ctx, q)
	return items, err
}

// FetchAnnotated returns web results and, when the engine rewrote the
// query, the corrected query under "corrected_query".
func (w *Web) FetchAnnotated(ctx context.Context, q types.Query) ([]types.Item, map[string]string, error) {
	var out webResponse
	err := w.p.search.GetJSON(ctx, "/web/search", map[string]string{
		"q":              q.Text,
		"safesearch":     w.p.safesearch,
		"units":          "imperial",
		"extra_snippets": "true",
	}, &out)
	if err != nil {
		return nil, nil, err
	}

	var meta map[string]string
	if out.Query.Altered != "" && out.Query.Altered != out.Query.Original {
		meta = map[string]string{"corrected_query": out.Query.Altered}
	}
	if out.Web == nil {
		return nil, meta, nil
	}

	items := make([]types.Item, 0, len(out.Web.Results))
	for _, r := range out.Web.Results {
		if r.URL == "" {
			continue
		}
		favicon := r.MetaURL.Favicon
		if favicon == "" {
			favicon = r.Profile.Img
		}
		items = append(items, types.NewText(types.TextItem{
			Title:    htmlutil.StripTags(r.Title),
			Snippet:  htmlutil.StripTags(r.Description),
			Link:     r.URL,
			SiteName: r.Profile.Name,
			Favicon:  favicon,
			Age:      r.Age,
		}))
	}
	return items, meta, nil
}

// Images is the image search backend
type Images struct{ p *Provider }

// Source identifies the backend
func (i *Images) Source() types.Source { return types.Source{Kind: types.KindImage} }

// Fetch returns image hits in provider order
func (i *Images) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	var out imageResponse
	err := i.p.search.GetJSON(ctx, "/images/search", map[string]string{
		"q":          q.Text,
		"safesearch": imageSafesearch(i.p.safesearch),
		"count":      strconv.Itoa(i.p.imageCount),
	}, &out)
	if err != nil {
		return nil, err
	}

	items := make([]types.Item, 0, len(out.Results))
	for _, r := range out.Results {
		thumb := r.Thumbnail.Src
		if thumb == "" {
			thumb = r.Properties.URL
		}
		if thumb == "" {
			continue
		}
		items = append(items, types.NewImage(types.ImageItem{
			ThumbnailURL: thumb,
			Link:         r.URL,
			Title:        htmlutil.StripTags(r.Title),
		}))
	}
	return items, nil
}

// News is the news search backend
type News struct{ p *Provider }

// Source identifies the backend
func (n *News) Source() types.Source { return types.Source{Kind: types.KindNews} }

// Fetch returns news stories for the query
func (n *News) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	var out newsResponse
	err := n.p.search.GetJSON(ctx, "/news/search", map[string]string{
		"q":          q.Text,
		"safesearch": n.p.safesearch,
	}, &out)
	if err != nil {
		return nil, err
	}

	items := make([]types.Item, 0, len(out.Results))
	for _, r := range out.Results {
		item := types.NewsItem{
			Headline:  htmlutil.StripTags(r.Title),
			Link:      r.URL,
			Snippet:   htmlutil.StripTags(r.Description),
			Source:    r.MetaURL.Hostname,
			Timestamp: parsePageAge(r.PageAge),
		}
		if r.Profile != nil && r.Profile.Name != "" {
			item.Source = r.Profile.Name
		}
		if r.Thumbnail != nil {
			item.Thumbnail = r.Thumbnail.Src
		}
		items = append(items, types.NewNews(item))
	}
	return items, nil
}

// The image endpoint only accepts "off" and "strict"
func imageSafesearch(level string) string {
	if level == "off" {
		return "off"
	}
	return "strict"
}

func parsePageAge(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
